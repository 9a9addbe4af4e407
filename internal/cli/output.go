// Table and JSON output shared by the list commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/billyloki/module-shop-admin/pkg/grid"
	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// pageJSON is the --json form of one grid page.
type pageJSON[T any] struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
	Items     []T `json:"items"`
}

func pageOf[T any](snap grid.Snapshot[T]) pageJSON[T] {
	return pageJSON[T]{
		Page:      snap.Query.PageNumber,
		PageSize:  snap.Query.PageSize,
		PageCount: snap.PageCount,
		Total:     snap.Result.TotalCount(),
		Items:     snap.Result.Items(),
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printTable writes header, a dashes row and rows through a tabwriter,
// trimming the padding tabwriter leaves on the last column.
func printTable(w io.Writer, header []string, rows [][]string) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	dashes := make([]string, len(header))
	for i, h := range header {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// printFooter writes the displayed range under a table.
func printFooter[T any](w io.Writer, snap grid.Snapshot[T]) {
	fmt.Fprintf(w, "Page %d/%d  %s\n", snap.Query.PageNumber, max(snap.PageCount, 1), snap.Range)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// shownError carries the message a screen notified for err, so the CLI
// prints what the interactive view would show.
type shownError struct {
	msg string
	err error
}

func (e *shownError) Error() string { return e.msg }
func (e *shownError) Unwrap() error { return e.err }

// report prefers the notified message for err. Transport failures keep
// their detail, since the generic notice hides the cause.
func report(err error, notes *notify.Recorder) error {
	if err == nil || errors.Is(err, types.ErrTransport) {
		return err
	}
	if n, ok := notes.Last(); ok && n.Message != "" {
		return &shownError{msg: n.Message, err: err}
	}
	return err
}
