package web

import "net/http"

type RequestContext struct {
	IsHTMX     bool   // HX-Request header present
	CurrentURL string // HX-Current-URL - where the user is
	TriggerID  string // HX-Trigger - what element initiated this
	TargetID   string // HX-Target - where response will land
}

func parseRequestContext(r *http.Request) RequestContext {
	return RequestContext{
		IsHTMX:     r.Header.Get("HX-Request") == "true",
		CurrentURL: r.Header.Get("HX-Current-URL"),
		TriggerID:  r.Header.Get("HX-Trigger"),
		TargetID:   r.Header.Get("HX-Target"),
	}
}
