package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"energychart/internal/i18n"
	"energychart/internal/models"
)

// parseLimit reads a positive list limit capped at ceiling
func parseLimit(value string, def, ceiling int) int {
	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}

// translator picks the language from the lang parameter or Accept-Language
func (s *Server) translator(r *http.Request) i18n.Translator {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return s.Bundle.Translator(lang)
	}
	return s.Bundle.Translator(r.Header.Get("Accept-Language"))
}

// channelsOrDefault returns the requested channels, or the channels the
// energy chart needs when none were requested
func (s *Server) channelsOrDefault(value string) (models.ChannelAddresses, error) {
	channels, err := models.ParseChannelAddresses(value)
	if err != nil {
		return nil, err
	}
	if channels.Len() == 0 {
		return s.EdgeConfig.ImportantChannels(), nil
	}
	return channels, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
