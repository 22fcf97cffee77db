package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/aleister1102/pagecheck/internal/common/textsanitize"
	"github.com/aleister1102/pagecheck/internal/models"
	"github.com/fatih/color"
)

var (
	okLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	dim       = color.New(color.FgHiBlack).SprintFunc()
	cyan      = color.New(color.FgCyan).SprintFunc()
)

// printJSON writes the sanitized result as one line
func printJSON(w io.Writer, result models.AuditResult) error {
	body, err := textsanitize.MarshalJSON(result)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(body))
	return err
}

// printSummary writes a short human readable report
func printSummary(w io.Writer, target string, result models.AuditResult) {
	if !result.Succeeded() {
		fmt.Fprintf(w, "%s %s\n", failLabel("FAIL"), target)
		if result.Failure != nil {
			fmt.Fprintf(w, "  %s %s\n", dim(string(result.Failure.Code)), result.Failure.Reason)
		}
		return
	}

	report := result.Report
	fmt.Fprintf(w, "%s %s %s %d\n", okLabel("OK"), report.InputURL, dim("->"), report.Status)
	fmt.Fprintf(w, "  final url:      %s\n", cyan(report.FinalURL))
	fmt.Fprintf(w, "  responses:      %d (%d hosts)\n", len(report.Responses), countHosts(report.Responses))
	fmt.Fprintf(w, "  cookies:        %d\n", len(report.Cookies))
	fmt.Fprintf(w, "  local storage:  %d keys\n", len(report.LocalStorage))
	if report.SecurityInfo.State != "" {
		fmt.Fprintf(w, "  security state: %s\n", report.SecurityInfo.State)
	}

	headers := make([]string, 0, len(report.ResponseHeaders))
	for name := range report.ResponseHeaders {
		headers = append(headers, name)
	}
	sort.Strings(headers)
	for _, name := range headers {
		fmt.Fprintf(w, "  %s %s: %s\n", dim("header"), name, report.ResponseHeaders[name])
	}
}

func countHosts(records []models.ResponseRecord) int {
	hosts := make(map[string]struct{}, len(records))
	for _, r := range records {
		if host := hostOf(r.URL); host != "" {
			hosts[host] = struct{}{}
		}
	}
	return len(hosts)
}
