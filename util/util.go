package util

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// ID a unique identifier
type ID []byte

// NewID generate a new ID
func NewID() ID {
	ret := make(ID, 20)
	if _, err := rand.Read(ret); err != nil {
		panic(err)
	}
	return ret
}

// SetResponse builds the standard {data, status, message} envelope
func SetResponse(data interface{}, status int, message string) map[string]interface{} {
	response := make(map[string]interface{})
	response["data"] = nil
	if data != nil {
		response["data"] = data
	}
	response["status"] = status
	response["message"] = message
	return response
}

// Contains reports whether e is present in s
func Contains(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

// PrettyPrint prints labeled data as indented JSON
func PrettyPrint(data ...interface{}) error {
	fmt.Println()
	byteData, err := json.MarshalIndent(data[len(data)-1], "", " ")
	if err != nil {
		return err
	}
	if len(data) > 1 {
		fmt.Println(data[:len(data)-1]...)
	}
	fmt.Println(string(byteData))
	fmt.Println()
	return nil
}

// Recover logs a panic without crashing the caller's goroutine
func Recover() {
	if r := recover(); r != nil {
		logrus.Errorf("recovered from panic: %v\n%s", r, debug.Stack())
	}
}

// RecoverGoroutinePanic recovers and signals done if provided
func RecoverGoroutinePanic(done chan<- struct{}) {
	if r := recover(); r != nil {
		logrus.Errorf("goroutine panic: %v\n%s", r, debug.Stack())
	}
	if done != nil {
		done <- struct{}{}
	}
}
