package reports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"energychart/internal/i18n"
	"energychart/internal/models"
)

const periodLayout = "2006-01-02 15:04"

// newMarkdown configures goldmark with tables enabled
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
}

// SummaryMarkdown renders the totals of a report as a markdown table
func SummaryMarkdown(totals Totals, state models.ViewState, tr i18n.Translator) string {
	from, to := span(state)

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", tr.Instant(i18n.KeyReportTitle))
	fmt.Fprintf(&b, "%s: %s - %s\n\n", tr.Instant(i18n.KeyReportPeriod), from.Format(periodLayout), to.Format(periodLayout))
	b.WriteString("| | kWh |\n|---|---:|\n")
	rows := []struct {
		key   string
		value float64
	}{
		{i18n.KeyReportProduced, totals.Produced},
		{i18n.KeyReportConsumed, totals.Consumed},
		{i18n.KeyReportSold, totals.Sold},
		{i18n.KeyReportBought, totals.Bought},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", tr.Instant(row.key), humanize.FormatFloat("#,###.##", row.value))
	}
	fmt.Fprintf(&b, "\n%s: %d\n", tr.Instant(i18n.KeyReportSamples), totals.Samples)
	return b.String()
}

// MarkdownToHTML converts markdown to HTML using goldmark
func MarkdownToHTML(md goldmark.Markdown, markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}
