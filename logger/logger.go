package logger

import (
	"fmt"
	"log"
)

const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

func logMsg(color, prefix, format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	log.Printf("%s[%s]%s %s", color, prefix, Reset, msg)
}

func Info(prefix, format string, v ...interface{}) {
	logMsg(Cyan, prefix, format, v...)
}

func Success(prefix, format string, v ...interface{}) {
	logMsg(Green, prefix, format, v...)
}

func Warn(prefix, format string, v ...interface{}) {
	logMsg(Yellow, prefix, format, v...)
}

func Error(prefix, format string, v ...interface{}) {
	logMsg(Red, prefix, format, v...)
}

func Wallet(format string, v ...interface{}) {
	logMsg(Blue, "WALLET", format, v...)
}

func Store(format string, v ...interface{}) {
	logMsg(Cyan, "STORE", format, v...)
}

func Solana(format string, v ...interface{}) {
	logMsg(Yellow, "SOLANA", format, v...)
}
