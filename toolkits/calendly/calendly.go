// Package calendly builds declarative ToolSpecs for the Calendly scheduling
// API. The tools are plain authenticated HTTP calls, so they are expressed
// entirely through endpoint, header, and body templates rather than Go code;
// feed the specs to toolbridge.Build alongside any other tool sources.
package calendly

import (
	"github.com/skosovsky/toolbridge"
)

// DefaultBaseURL is the public Calendly API endpoint.
const DefaultBaseURL = "https://api.calendly.com"

// Specs returns the Calendly tool specifications. baseURL is usually
// DefaultBaseURL; tests point it at a local server. token is a Calendly
// OAuth access token and is injected as a literal Authorization header, never
// exposed as a tool parameter.
func Specs(baseURL, token string) []toolbridge.ToolSpec {
	auth := map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "application/json",
	}
	return []toolbridge.ToolSpec{
		{
			Name:             "calendly_list_event_types",
			Description:      "List the active Calendly event types for a user, including their URIs and scheduling URLs.",
			EndpointTemplate: baseURL + "/event_types?user={user_uri}&active=true",
			Method:           "GET",
			HeaderTemplates:  auth,
			Parameters: []toolbridge.ParamSpec{
				{Name: "user_uri", Type: "string", Required: true,
					Description: "URI of the Calendly user whose event types to list"},
			},
		},
		{
			Name:             "calendly_check_availability",
			Description:      "List available time slots for an event type within a date range.",
			EndpointTemplate: baseURL + "/event_type_available_times?event_type={event_type_uri}&start_time={start_time}&end_time={end_time}",
			Method:           "GET",
			HeaderTemplates:  auth,
			Parameters: []toolbridge.ParamSpec{
				{Name: "event_type_uri", Type: "string", Required: true,
					Description: "URI of the event type, from calendly_list_event_types"},
				{Name: "start_time", Type: "string", Required: true,
					Description: "Start of the range, ISO 8601 (e.g. 2025-12-09T00:00:00Z)"},
				{Name: "end_time", Type: "string", Required: true,
					Description: "End of the range, ISO 8601"},
			},
		},
		{
			Name:             "calendly_create_event",
			Description:      "Book a meeting on an event type for an invitee. Requires a paid Calendly plan.",
			EndpointTemplate: baseURL + "/invitees",
			Method:           "POST",
			HeaderTemplates:  auth,
			BodyTemplate: map[string]any{
				"event_type": "{event_type_uri}",
				"start_time": "{start_time}",
				"invitee": map[string]any{
					"name":     "{invitee_name}",
					"email":    "{invitee_email}",
					"timezone": "{invitee_timezone}",
				},
			},
			Parameters: []toolbridge.ParamSpec{
				{Name: "event_type_uri", Type: "string", Required: true,
					Description: "URI of the event type to book"},
				{Name: "start_time", Type: "string", Required: true,
					Description: "Start time, ISO 8601 (e.g. 2025-12-09T14:00:00Z)"},
				{Name: "invitee_name", Type: "string", Required: true,
					Description: "Full name of the invitee"},
				{Name: "invitee_email", Type: "string", Required: true,
					Description: "Email address of the invitee"},
				{Name: "invitee_timezone", Type: "string", Required: true,
					Description: "IANA timezone of the invitee (e.g. UTC, America/New_York)"},
			},
		},
	}
}
