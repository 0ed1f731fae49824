package utils

import (
	"math"
	"os"

	"github.com/rs/zerolog/log"
)

func init() {
	checkCompiler()
}

// Enforces a 64bit machine due to assumptions about size of ints.
func checkCompiler() {
	myInt := int(math.MaxInt64) // Shouldn't compile on a 32 bit system.
	myInt64 := int64(math.MaxInt64)
	if uint64(myInt) != uint64(myInt64) {
		panic("Must be on 64 bit system.")
	}
}

func OpenFile(path string) (file *os.File) {
	file, err := os.Open(path)
	if err != nil {
		log.Panic().Err(err).Msg("Failed to open file: " + path)
	}
	return file
}

func ToIntStr(buf string) (n uint32) {
	for i := 0; i < len(buf); i++ {
		n = n*10 + uint32(buf[i]-'0')
	}
	return
}
