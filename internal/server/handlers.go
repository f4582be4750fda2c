package server

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"energychart/internal/charts"
	"energychart/internal/config"
	"energychart/internal/i18n"
	"energychart/internal/models"
	"energychart/internal/storage"
)

// EnergyChartResponse is the JSON form of a rendered energy chart. Error is
// set when the historic data could not be loaded; State is then empty.
type EnergyChartResponse struct {
	Title   string              `json:"title"`
	State   models.ViewState    `json:"state"`
	Options charts.ChartOptions `json:"options"`
	// Tooltips holds the rendered hover text per label, for clients that do
	// not run the tooltip callbacks themselves
	Tooltips []charts.Tooltip `json:"tooltips,omitempty"`
	Error    string           `json:"error,omitempty"`
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<form method="get" action="/energychart">
<input type="date" name="from" value="{{.From}}"> <input type="date" name="to" value="{{.To}}">
<input type="hidden" name="lang" value="{{.Lang}}">
<button type="submit">OK</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{.Chart}}
<p><a href="{{.PNG}}">PNG</a> | <a href="/reports">Reports</a></p>
</body>
</html>
`))

type pageData struct {
	Lang  string
	Title string
	From  string
	To    string
	Error string
	PNG   string
	Chart template.HTML
}

// HandleRoot redirects to the energy chart page
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/energychart", http.StatusFound)
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   config.GetVersion(),
		"checks": map[string]string{
			"config":  "ok",
			"storage": s.storageStatus(),
		},
	})
}

func (s *Server) storageStatus() string {
	if s.Storage == nil {
		return "disabled"
	}
	return "ok"
}

// loadChart runs one energy chart query for the request. The returned error
// is a client error; a failed query is reported through the response.
func (s *Server) loadChart(r *http.Request) (EnergyChartResponse, models.TimeRange, i18n.Translator, error) {
	tr := s.translator(r)
	query := r.URL.Query()

	rng, err := models.ParseTimeRange(query.Get("from"), query.Get("to"), s.Location, time.Now())
	if err != nil {
		return EnergyChartResponse{}, rng, tr, err
	}
	channels, err := s.channelsOrDefault(query.Get("channels"))
	if err != nil {
		return EnergyChartResponse{}, rng, tr, err
	}

	chart := charts.NewEnergyChart(s.Fetcher, s.EdgeConfig, tr, charts.WithQueryTimeout(s.Config.EdgeTimeout))
	defer chart.Close()

	resp := EnergyChartResponse{
		Title:   tr.Instant(i18n.KeyChartTitle),
		Options: chart.Options(),
	}
	if err := chart.Update(r.Context(), rng, channels); err != nil {
		resp.Error = err.Error()
	}
	resp.State = chart.State()
	resp.Tooltips = charts.RenderTooltips(resp.State, resp.Options)
	return resp, rng, tr, nil
}

// HandleEnergyChartData returns the energy chart of the requested range as JSON
func (s *Server) HandleEnergyChartData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp, _, _, err := s.loadChart(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleEnergyChartPage serves an HTML page with the energy chart
func (s *Server) HandleEnergyChartPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp, rng, tr, err := s.loadChart(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snippet, err := charts.GenerateEnergyChartSnippet("", resp.Title, resp.State, resp.Options, charts.NewTooltipFormatter(tr))
	if err != nil {
		s.log.Error("Failed to render energy chart", err, nil)
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}

	pngQuery := r.URL.Query()
	pngQuery.Set("lang", tr.Language().String())
	data := pageData{
		Lang:  tr.Language().String(),
		Title: resp.Title,
		From:  rng.From.Format(models.DateLayout),
		To:    rng.To.Format(models.DateLayout),
		Error: resp.Error,
		PNG:   "/energychart.png?" + pngQuery.Encode(),
		Chart: template.HTML(snippet.HTML),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.log.Error("Failed to render page", err, nil)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// HandleEnergyChartPNG serves the energy chart as a PNG image
func (s *Server) HandleEnergyChartPNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp, _, _, err := s.loadChart(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	err = charts.RenderPNG(resp.State, charts.PNGOptions{
		Title:  resp.Title,
		YLabel: resp.Options.Scales.YAxis.ScaleLabel.LabelString,
	}, &buf)
	if err != nil {
		s.log.Error("Failed to render PNG", err, nil)
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

// HandleGenerateReport generates and stores a report of the requested range
func (s *Server) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report storage is not configured")
		return
	}

	query := r.URL.Query()
	rng, err := models.ParseTimeRange(query.Get("from"), query.Get("to"), s.Location, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	channels, err := models.ParseChannelAddresses(query.Get("channels"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.Reports.Create(r.Context(), rng, channels, s.translator(r))
	if err != nil {
		writeError(w, http.StatusBadGateway, "report generation failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"path":   result.Path,
		"url":    "/files/" + result.Path,
		"totals": result.Totals,
	})
}

// HandleListReports lists recent reports
func (s *Server) HandleListReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report storage is not configured")
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"), 10, 100)
	list, err := s.Reports.List(r.Context(), limit)
	if err != nil {
		s.log.Error("Failed to list reports", err, nil)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if list == nil {
		list = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports":   list,
		"count":     len(list),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleFileProxy serves stored report files
func (s *Server) HandleFileProxy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Reports == nil {
		http.Error(w, "Report storage is not configured", http.StatusServiceUnavailable)
		return
	}

	filePath, err := storage.CleanPath(strings.TrimPrefix(r.URL.Path, "/files/"))
	if err != nil {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	data, err := s.Reports.GetFile(r.Context(), filePath)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("Failed to get file from storage", err, map[string]interface{}{"path": filePath})
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", storage.GetContentType(filePath))
	w.Write(data)
}
