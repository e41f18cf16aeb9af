package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output is the JSON envelope every command prints to stdout. Exactly one
// of Data, Error, or Message is set.
type Output struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func successData(data any) Output {
	return Output{Success: true, Data: data}
}

func successMsg(message string) Output {
	return Output{Success: true, Message: message}
}

func errorOutput(err string) Output {
	return Output{Success: false, Error: err}
}

func printOutput(w io.Writer, out Output) {
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		// The envelope itself failed to serialize; degrade to a minimal
		// error envelope rather than printing nothing.
		fmt.Fprintf(w, "{\n  \"success\": false,\n  \"error\": %q\n}\n", err.Error())
		return
	}
	fmt.Fprintln(w, string(encoded))
}
