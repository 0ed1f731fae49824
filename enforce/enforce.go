// Package enforce halts the run on violated invariants: failed device calls,
// walks past the set-size bound, out-of-range graph input. There is no
// sensible recovery from any of these, so partial results go down with the
// process.
package enforce

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// ENFORCE accepts a bool condition, an error, or a bare failure message.
// A nil query passes, which allows enforce.ENFORCE(err) on the happy path.
func ENFORCE(query interface{}, args ...interface{}) {
	switch t := query.(type) {
	case bool:
		if !t {
			fail(fmt.Sprint(args...))
		}
	case error:
		if t != nil {
			fail(t.Error() + " " + fmt.Sprint(args...))
		}
	case string:
		fail(t + " " + fmt.Sprint(args...))
	case nil:
	default:
		fail(fmt.Sprintf("bad enforce query type %T: %v %v", t, t, args))
	}
}

func fail(msg string) {
	log.Error().Msg("ENFORCE: " + msg)
	panic(msg)
}
