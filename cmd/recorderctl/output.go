package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"traffic-recorder/internal/domain/entity"
)

// StatusResult is the result of the status command.
type StatusResult struct {
	Server          string `json:"server"`
	Status          string `json:"status"`
	Version         string `json:"version"`
	Store           string `json:"store"`
	QueueDepth      int    `json:"queueDepth"`
	TrackedRequests int    `json:"trackedRequests"`
	Recording       bool   `json:"recording"`
	Badge           string `json:"badge"`
}

// RecordResult is the result of the record command.
type RecordResult struct {
	Recording bool `json:"recording"`
}

// LogsResult is the result of listing logs.
type LogsResult struct {
	Count int                `json:"count"`
	Logs  []entity.LogRecord `json:"logs"`
}

// ClearResult is the result of the clear command.
type ClearResult struct {
	Cleared bool `json:"cleared"`
}

func outputResult(result interface{}, format string) error {
	switch format {
	case "json":
		return outputJSON(result)
	case "yaml":
		return outputYAML(result)
	default:
		return outputTable(result)
	}
}

func outputJSON(result interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputYAML goes through JSON so the json tags and custom marshalers apply
func outputYAML(result interface{}) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return err
	}

	out, err := yaml.Marshal(generic)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func outputTable(result interface{}) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch r := result.(type) {
	case StatusResult:
		return outputStatusTable(w, r)
	case RecordResult:
		fmt.Fprintf(w, "RECORDING\t%s\n", onOff(r.Recording))
		return nil
	case LogsResult:
		return outputLogsTable(w, r)
	case entity.LogRecord:
		return outputLogTable(w, r)
	case ClearResult:
		fmt.Fprintln(w, "Logs cleared")
		return nil
	case entity.IngestResult:
		fmt.Fprintln(w, "ACCEPTED\tFILTERED\tORPHANED\tRATE LIMITED\tREJECTED")
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\n", r.Accepted, r.Filtered, r.Orphaned, r.RateLimited, r.Rejected)
		return nil
	default:
		// Fall back to JSON for unknown types
		return outputJSON(result)
	}
}

func outputStatusTable(w *tabwriter.Writer, r StatusResult) error {
	fmt.Fprintf(w, "SERVER\t%s\n", r.Server)
	fmt.Fprintf(w, "STATUS\t%s\n", r.Status)
	fmt.Fprintf(w, "VERSION\t%s\n", r.Version)
	fmt.Fprintf(w, "STORE\t%s\n", r.Store)
	fmt.Fprintf(w, "RECORDING\t%s\n", onOff(r.Recording))
	fmt.Fprintf(w, "BADGE\t%s\n", r.Badge)
	fmt.Fprintf(w, "QUEUE DEPTH\t%d\n", r.QueueDepth)
	fmt.Fprintf(w, "TRACKED\t%d\n", r.TrackedRequests)
	return nil
}

func outputLogsTable(w *tabwriter.Writer, r LogsResult) error {
	fmt.Fprintf(w, "TOTAL\t%d\n\n", r.Count)

	fmt.Fprintln(w, "TIME\tID\tMETHOD\tSTATUS\tTYPE\tURL")
	for _, l := range r.Logs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			formatTimestamp(l.Timestamp), l.ID, l.Method, formatStatus(l), l.RequestType, l.URL)
	}
	return nil
}

func outputLogTable(w *tabwriter.Writer, l entity.LogRecord) error {
	fmt.Fprintf(w, "ID\t%s\n", l.ID)
	fmt.Fprintf(w, "TIME\t%s\n", formatTimestamp(l.Timestamp))
	fmt.Fprintf(w, "METHOD\t%s\n", l.Method)
	fmt.Fprintf(w, "URL\t%s\n", l.URL)
	fmt.Fprintf(w, "TYPE\t%s\n", l.RequestType)
	fmt.Fprintf(w, "STATUS\t%s\n", formatStatus(l))

	if len(l.RequestHeaders) > 0 {
		fmt.Fprintln(w, "\nREQUEST HEADERS:")
		for name, value := range l.RequestHeaders {
			fmt.Fprintf(w, "  %s\t%s\n", name, value)
		}
	}
	if len(l.ResponseHeaders) > 0 {
		fmt.Fprintln(w, "\nRESPONSE HEADERS:")
		for name, value := range l.ResponseHeaders {
			fmt.Fprintf(w, "  %s\t%s\n", name, value)
		}
	}
	if l.RequestBody != nil {
		fmt.Fprintf(w, "\nBODY:\n%s\n", l.RequestBody.String())
	}
	return nil
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05.000")
}

func formatStatus(l entity.LogRecord) string {
	switch {
	case l.Error != "":
		return "ERR " + l.Error
	case l.Status == 0:
		return "pending"
	default:
		return fmt.Sprintf("%d", l.Status)
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
