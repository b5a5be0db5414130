package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hrygo/creastudio/envelope"
)

// unwrap turns an envelope into data or a Go error. Warnings are printed and
// still count as a result.
func unwrap[T any](w io.Writer, resp *envelope.Response[T]) (T, error) {
	var zero T
	switch {
	case resp.IsSuccess(), resp.IsInfo():
		return resp.Data, nil
	case resp.IsWarning():
		fmt.Fprintf(w, "warning: %s\n", resp.Message)
		for _, msg := range resp.Warnings {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
		return resp.Data, nil
	default:
		return zero, resp.Err()
	}
}

func printError(w io.Writer, err error) {
	var f *envelope.Failure
	if !errors.As(err, &f) {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "error: %s [%s]\n", f.Message, f.Code)
	if f.Details != "" && f.Details != f.Message {
		fmt.Fprintf(w, "  %s\n", f.Details)
	}
	for _, v := range f.Validation {
		fmt.Fprintf(w, "  %s: %s\n", v.Field, v.Message)
	}
	switch f.Code {
	case envelope.CodeTokenExpired, envelope.CodeUnauthorized:
		fmt.Fprintln(w, "  run `crea login` to sign in again")
	case envelope.CodeCompanyInfoRequired:
		fmt.Fprintln(w, "  complete your company profile before generating posts")
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes aligned rows; the first row is the header.
func table(w io.Writer, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
