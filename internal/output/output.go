// Package output provides a uniform write target for the CLI: stdout
// or a user-specified file, written to exactly once after the full
// FVC accumulation completes (partial output must never reach
// a user-specified path on fatal error).
package output

import (
	"fmt"
	"io"
)

// Output is a uniform interface over a destination stream.
type Output interface {
	Print(text string) (int, error)
	Println(text string) (int, error)
	Printf(format string, args ...interface{}) (int, error)
	Printfln(format string, args ...interface{}) (int, error)
	// Write exposes the raw byte sink, for binary output mode.
	Write(p []byte) (int, error)
}

// PlainOutput writes raw, unencoded bytes/text to Device.
type PlainOutput struct {
	Device io.Writer
}

// Print writes text verbatim.
func (o *PlainOutput) Print(text string) (int, error) {
	return o.Device.Write([]byte(text))
}

// Println writes text followed by a newline.
func (o *PlainOutput) Println(text string) (int, error) {
	n1, err := o.Device.Write([]byte(text))
	if err != nil {
		return n1, err
	}
	n2, err := o.Device.Write([]byte{'\n'})
	return n1 + n2, err
}

// Printf writes a formatted string.
func (o *PlainOutput) Printf(format string, args ...interface{}) (int, error) {
	return o.Device.Write([]byte(fmt.Sprintf(format, args...)))
}

// Printfln writes a formatted string followed by a newline.
func (o *PlainOutput) Printfln(format string, args ...interface{}) (int, error) {
	return o.Device.Write([]byte(fmt.Sprintf(format+"\n", args...)))
}

// Write implements io.Writer directly, for binary output mode.
func (o *PlainOutput) Write(p []byte) (int, error) {
	return o.Device.Write(p)
}
