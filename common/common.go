package common

import (
	"runtime/debug"
	"strings"

	log "github.com/sirupsen/logrus"
)

//Recover from panic
func Recover(msg string) {
	if err := recover(); err != nil {
		log.Error(msg, err)
		log.Errorf("%s: %s", err, debug.Stack())
	}
}

//WithRecover recovers a panic in go routine
func WithRecover(routine func(), msg string) {
	defer Recover(msg)
	routine()
}

//StripSeparator removes every occurrence of sep from s
func StripSeparator(s, sep string) string {
	if sep == "" {
		return s
	}
	return strings.ReplaceAll(s, sep, "")
}
