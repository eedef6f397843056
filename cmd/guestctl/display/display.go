// Package display provides output formatting for guestctl.
//
// Every function honors the global --output flag: JSON output is the raw
// value with two-space indentation, table output uses text/tabwriter with a
// short summary block underneath. Progress lines printed while a batch runs
// are table-mode only so JSON output stays machine readable.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/concave-dev/guestbook/cmd/guestctl/client"
	"github.com/concave-dev/guestbook/cmd/guestctl/config"
	"github.com/concave-dev/guestbook/cmd/guestctl/utils"
	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/chain"
	"github.com/concave-dev/guestbook/internal/history"
	"github.com/concave-dev/guestbook/internal/logging"
	internalutils "github.com/concave-dev/guestbook/internal/utils"
)

// Output is where all display functions write. Tests swap it for a buffer.
var Output io.Writer = os.Stdout

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

func isJSON() bool {
	return config.Global.Output == "json"
}

// printJSON writes v as indented JSON
func printJSON(v any) {
	encoder := json.NewEncoder(Output)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logging.Error("Failed to encode JSON: %v", err)
		fmt.Fprintln(Output, "Error encoding JSON output")
	}
}

// Progress prints one line per attempt failure and per finished operation.
// It implements batching.Observer.
type Progress struct {
	total int
}

// NewProgress returns a progress printer for a batch of total operations.
func NewProgress(total int) *Progress {
	return &Progress{total: total}
}

// AttemptFailed prints a failed attempt and whether it will be retried.
func (p *Progress) AttemptFailed(attempt batching.Attempt, err error, willRetry bool) {
	next := "giving up"
	if willRetry {
		next = "retrying"
	}
	fmt.Fprintf(Output, "  %s [%d/%d] attempt %d failed: %v (%s)\n",
		warnStyle.Render("!"), attempt.Sequence, p.total, attempt.Number, err, next)
}

// OutcomeRecorded prints the final result of one operation.
func (p *Progress) OutcomeRecorded(o batching.Outcome) {
	if o.Success {
		fmt.Fprintf(Output, "%s [%d/%d] %s %q tx %s block %d\n",
			okStyle.Render("✓"), o.Sequence, p.total, o.Kind, o.Label,
			internalutils.AbbreviateHex(o.TxHash), o.BlockNumber)
		return
	}
	fmt.Fprintf(Output, "%s [%d/%d] %s %q failed: %s\n",
		failStyle.Render("✗"), o.Sequence, p.total, o.Kind, o.Label, o.FailureReason)
}

// DisplayPlanned prints what a run is about to submit.
func DisplayPlanned(groups [][]batching.Operation, pacing time.Duration, target string) {
	if isJSON() {
		return
	}

	counts := make(map[batching.Kind]int)
	total := 0
	for _, group := range groups {
		for _, op := range group {
			counts[op.Kind()]++
			total++
		}
	}

	var parts []string
	for _, kind := range batching.Kinds {
		if counts[kind] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[kind], kind))
		}
	}
	fmt.Fprintf(Output, "%s %d operation(s) (%s) via %s, %v between transactions\n\n",
		titleStyle.Render("Submitting"), total, strings.Join(parts, ", "), target, pacing)
}

// DisplayReport prints a batch report: one row per operation in verbose
// mode, then the summary block.
func DisplayReport(report *batching.Report, elapsed time.Duration) {
	if isJSON() {
		printJSON(report)
		return
	}

	if config.Global.Verbose && len(report.Outcomes) > 0 {
		w := tabwriter.NewWriter(Output, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tKIND\tLABEL\tSTATUS\tTX\tBLOCK\tGAS\tATTEMPTS")
		for _, o := range report.Outcomes {
			status := "ok"
			tx, block, gas := o.TxHash, fmt.Sprintf("%d", o.BlockNumber), humanize.Comma(int64(o.GasUsed))
			if !o.Success {
				status = "failed"
				block, gas = "-", "-"
				if tx == "" {
					tx = "-"
				}
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
				o.Sequence, o.Kind, truncate(o.Label, 32), status,
				internalutils.AbbreviateHex(tx), block, gas, o.Attempts)
		}
		w.Flush()
		fmt.Fprintln(Output)
	}

	displaySummary(report, elapsed)
}

func displaySummary(report *batching.Report, elapsed time.Duration) {
	fmt.Fprintln(Output, titleStyle.Render("Summary"))
	w := tabwriter.NewWriter(Output, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if report.Interrupted {
		fmt.Fprintf(w, "  Interrupted:\t%s\n",
			warnStyle.Render(fmt.Sprintf("%d of %d operations attempted", report.Total, report.Requested)))
	}
	fmt.Fprintf(w, "  Operations:\t%d\n", report.Total)
	fmt.Fprintf(w, "  Succeeded:\t%d (%.0f%%)\n", report.Succeeded, report.SuccessRate()*100)
	fmt.Fprintf(w, "  Failed:\t%d\n", report.Failed)
	for _, kind := range batching.Kinds {
		if n := report.ByKind[kind]; n > 0 {
			fmt.Fprintf(w, "  %s:\t%d\n", kindTitle(kind), n)
		}
	}
	fmt.Fprintf(w, "  Total gas used:\t%s\n", humanize.Comma(int64(report.TotalGasUsed)))
	if report.TotalValueSpent != nil && report.TotalValueSpent.Sign() > 0 {
		fmt.Fprintf(w, "  Total value spent:\t%s ETH\n", chain.FormatEther(report.TotalValueSpent))
	}
	if elapsed > 0 {
		fmt.Fprintf(w, "  Elapsed:\t%s\n", elapsed.Round(time.Millisecond))
	}
}

// kindTitle is the summary label for successful operations of a kind
func kindTitle(kind batching.Kind) string {
	switch kind {
	case batching.KindPostMessage:
		return "Messages posted"
	case batching.KindCreateTodo:
		return "Todos created"
	case batching.KindSendPayment:
		return "Payments sent"
	default:
		return string(kind)
	}
}

// DisplaySubmitted prints the daemon's acceptance of a batch.
func DisplaySubmitted(resp *client.BatchSubmitResponse) {
	if isJSON() {
		printJSON(resp)
		return
	}
	fmt.Fprintf(Output, "Batch queued:\n")
	fmt.Fprintf(Output, "  ID:         %s\n", resp.BatchID)
	fmt.Fprintf(Output, "  Name:       %s\n", resp.Name)
	fmt.Fprintf(Output, "  Status:     %s\n", resp.Status)
	fmt.Fprintf(Output, "  Operations: %d\n", resp.Requested)
}

// DisplayBatch prints a stored batch record with its report.
func DisplayBatch(rec *history.Record) {
	if isJSON() {
		printJSON(rec)
		return
	}

	fmt.Fprintf(Output, "Batch: %s\n", titleStyle.Render(rec.Name))
	fmt.Fprintf(Output, "  ID:         %s\n", rec.ID)
	fmt.Fprintf(Output, "  Status:     %s\n", statusText(rec.Status))
	fmt.Fprintf(Output, "  Operations: %d\n", rec.Requested)
	fmt.Fprintf(Output, "  Submitted:  %s (%s)\n",
		rec.SubmittedAt.Format(time.RFC3339), humanize.Time(rec.SubmittedAt))
	if !rec.FinishedAt.IsZero() {
		fmt.Fprintf(Output, "  Finished:   %s\n", rec.FinishedAt.Format(time.RFC3339))
	}
	if rec.Error != "" {
		fmt.Fprintf(Output, "  Error:      %s\n", rec.Error)
	}
	fmt.Fprintln(Output)

	if rec.Report != nil {
		DisplayReport(rec.Report, rec.Duration())
	}
}

// DisplayBatches prints batch summaries, newest first.
func DisplayBatches(batches []client.BatchSummary) {
	if len(batches) == 0 {
		if isJSON() {
			fmt.Fprintln(Output, "[]")
		} else {
			fmt.Fprintln(Output, "No batches found")
		}
		return
	}

	if isJSON() {
		printJSON(batches)
		return
	}

	w := tabwriter.NewWriter(Output, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tOPS\tOK\tFAILED\tGAS\tSUBMITTED\tDURATION")
	for _, b := range batches {
		duration := "-"
		if !b.FinishedAt.IsZero() {
			duration = utils.FormatDuration(b.FinishedAt.Sub(b.SubmittedAt))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			internalutils.TruncateIDSafe(b.ID), b.Name, b.Status, b.Requested,
			b.Succeeded, b.Failed, humanize.Comma(int64(b.GasUsed)),
			humanize.Time(b.SubmittedAt), duration)
	}
}

// DisplayStats prints a contract and signer snapshot.
func DisplayStats(stats *chain.Stats) {
	if isJSON() {
		printJSON(stats)
		return
	}

	fmt.Fprintln(Output, titleStyle.Render("Guestbook"))
	w := tabwriter.NewWriter(Output, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if stats.ChainID != nil {
		fmt.Fprintf(w, "  Chain ID:\t%s\n", stats.ChainID)
	}
	fmt.Fprintf(w, "  Contract:\t%s\n", stats.Contract)
	fmt.Fprintf(w, "  Total messages:\t%s\n", bigOrDash(stats.TotalMessages))
	if stats.TodoCounter != nil {
		fmt.Fprintf(w, "  Todos created:\t%s\n", stats.TodoCounter)
	}
	if stats.TodoFee != nil {
		fmt.Fprintf(w, "  Todo fee:\t%s ETH\n", chain.FormatEther(stats.TodoFee))
	}
	if stats.Sender != "" {
		fmt.Fprintf(w, "  Signer:\t%s\n", stats.Sender)
		fmt.Fprintf(w, "  Balance:\t%s ETH\n", chain.FormatEther(stats.Balance))
	}
}

// DisplayMessages prints guestbook messages, newest first.
func DisplayMessages(messages []chain.Message) {
	if len(messages) == 0 {
		if isJSON() {
			fmt.Fprintln(Output, "[]")
		} else {
			fmt.Fprintln(Output, "No messages found")
		}
		return
	}

	if isJSON() {
		printJSON(messages)
		return
	}

	w := tabwriter.NewWriter(Output, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if config.Global.Verbose {
		fmt.Fprintln(w, "#\tNAME\tMESSAGE\tSENDER\tPOSTED")
	} else {
		fmt.Fprintln(w, "#\tNAME\tMESSAGE\tPOSTED")
	}
	for _, m := range messages {
		posted := "-"
		if !m.Timestamp.IsZero() {
			posted = humanize.Time(m.Timestamp)
		}
		if config.Global.Verbose {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", m.Index, m.Name, m.Body, m.Sender, posted)
		} else {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.Index, truncate(m.Name, 24), truncate(m.Body, 48), posted)
		}
	}
}

func statusText(s history.Status) string {
	switch s {
	case history.StatusCompleted:
		return okStyle.Render(string(s))
	case history.StatusFailed:
		return failStyle.Render(string(s))
	case history.StatusInterrupted:
		return warnStyle.Render(string(s))
	default:
		return string(s)
	}
}

func bigOrDash(v *big.Int) string {
	if v == nil {
		return "-"
	}
	return v.String()
}

// truncate shortens s to max runes with an ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// DisplayHealth shows the daemon's signer, queue and host resources.
func DisplayHealth(apiAddr string, health *client.Health) {
	if isJSON() {
		printJSON(health)
		return
	}

	fmt.Fprintln(Output, titleStyle.Render("guestbookd "+apiAddr))
	w := tabwriter.NewWriter(Output, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "  Status:\t%s\n", health.Status)
	fmt.Fprintf(w, "  Version:\t%s\n", health.Version)
	fmt.Fprintf(w, "  Uptime:\t%s\n", health.Uptime)
	if health.Sender != "" {
		fmt.Fprintf(w, "  Signer:\t%s\n", health.Sender)
	}
	if health.ChainID != "" {
		fmt.Fprintf(w, "  Chain ID:\t%s\n", health.ChainID)
	}
	fmt.Fprintf(w, "  Queue:\t%d/%d\n", health.QueueSize, health.QueueCap)

	if r := health.Resources; r != nil {
		fmt.Fprintf(w, "  CPU cores:\t%d\n", r.CPUCores)
		fmt.Fprintf(w, "  Memory:\t%s / %s (%.1f%%)\n",
			humanize.IBytes(r.MemoryUsed), humanize.IBytes(r.MemoryTotal), r.MemoryUsage)
		if r.Load1 > 0 || r.Load5 > 0 || r.Load15 > 0 {
			fmt.Fprintf(w, "  Load:\t%.2f %.2f %.2f\n", r.Load1, r.Load5, r.Load15)
		}
		if config.Global.Verbose {
			fmt.Fprintf(w, "  Goroutines:\t%d\n", r.GoRoutines)
			fmt.Fprintf(w, "  Go heap:\t%s (sys %s, %d GC cycles)\n",
				humanize.IBytes(r.GoMemAlloc), humanize.IBytes(r.GoMemSys), r.GoGCCycles)
		}
	}
	w.Flush()
}
