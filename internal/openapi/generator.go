// Package openapi builds the OpenAPI 3.1 document describing the admin
// authentication API.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/bpbdbogor/portal/internal/captcha"
	"github.com/bpbdbogor/portal/internal/service"
)

// Version is the API document version.
const Version = "1.0.0"

// GenerateAuthSpec returns the OpenAPI document for the admin auth API served
// at baseURL.
func GenerateAuthSpec(baseURL string) *openapi3.T {
	captchaLen := uint64(captcha.Length)
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Admin Portal Auth API",
			Description: "Username and password login for the admin portal. Successful logins return a signed bearer token.",
			Version:     Version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	doc.Components.Schemas["MessageResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"message"},
			Properties: openapi3.Schemas{
				"message": stringSchema(""),
			},
		},
	}
	doc.Components.Schemas["AdminProfile"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"id", "username", "name", "role"},
			Properties: openapi3.Schemas{
				"id":       stringSchema("uuid"),
				"username": stringSchema(""),
				"name":     stringSchema(""),
				"role":     stringSchema(""),
			},
		},
	}
	doc.Components.Schemas["LoginRequest"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"username", "password"},
			Properties: openapi3.Schemas{
				"username": stringSchema(""),
				"password": stringSchema("password"),
				"captcha": &openapi3.SchemaRef{Value: &openapi3.Schema{
					Type:        &openapi3.Types{"string"},
					Description: "Checked by the login page before submission; ignored by the server.",
					MinLength:   captcha.Length,
					MaxLength:   &captchaLen,
				}},
			},
		},
	}
	doc.Components.Schemas["LoginResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"token", "admin"},
			Properties: openapi3.Schemas{
				"token": stringSchema(""),
				"admin": ref("AdminProfile"),
			},
		},
	}
	doc.Components.Schemas["SessionResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"admin", "expires_at"},
			Properties: openapi3.Schemas{
				"admin":      ref("AdminProfile"),
				"expires_at": {Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}},
			},
		},
	}
	doc.Components.Schemas["ProbeResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"status": stringSchema(""),
				"checks": {Value: &openapi3.Schema{
					Type:                 &openapi3.Types{"object"},
					AdditionalProperties: openapi3.AdditionalProperties{Schema: stringSchema("")},
				}},
			},
		},
	}

	doc.Paths = openapi3.NewPaths()

	login := &openapi3.Operation{
		Tags:        []string{"auth"},
		Summary:     "Log in as an administrator",
		OperationID: "adminLogin",
		RequestBody: &openapi3.RequestBodyRef{
			Value: &openapi3.RequestBody{
				Required: true,
				Content:  openapi3.NewContentWithJSONSchemaRef(ref("LoginRequest")),
			},
		},
		Responses: newResponses(
			response(200, "Authenticated", ref("LoginResponse")),
			message(400, service.MsgMissingFields),
			message(401, service.MsgInvalidCredentials),
			message(500, service.MsgInternalError),
		),
	}
	preflight := &openapi3.Operation{
		Tags:        []string{"auth"},
		Summary:     "CORS preflight for the login endpoint",
		OperationID: "adminLoginPreflight",
		Responses:   newResponses(response(200, "Preflight accepted", nil)),
	}
	doc.Paths.Set("/api/admin/auth/login", &openapi3.PathItem{Post: login, Options: preflight})

	doc.Paths.Set("/api/admin/auth/me", &openapi3.PathItem{Get: &openapi3.Operation{
		Tags:        []string{"auth"},
		Summary:     "Describe the session carried by the bearer token",
		OperationID: "adminSession",
		Security:    &openapi3.SecurityRequirements{{"bearerAuth": {}}},
		Responses: newResponses(
			response(200, "Session is valid", ref("SessionResponse")),
			message(401, "Missing, invalid or expired token"),
		),
	}})

	doc.Paths.Set("/healthz", &openapi3.PathItem{Get: &openapi3.Operation{
		Tags:        []string{"system"},
		Summary:     "Liveness probe",
		OperationID: "healthz",
		Responses:   newResponses(response(200, "Process is running", ref("ProbeResponse"))),
	}})
	doc.Paths.Set("/readyz", &openapi3.PathItem{Get: &openapi3.Operation{
		Tags:        []string{"system"},
		Summary:     "Readiness probe",
		OperationID: "readyz",
		Responses: newResponses(
			response(200, "Credential store reachable", ref("ProbeResponse")),
			response(503, "Credential store unavailable", ref("ProbeResponse")),
		),
	}})

	return doc
}

// ─── Schema Helpers ─────────────────────────────────────────────────────────

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func stringSchema(format string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: format}}
}

// ─── Response Helpers ───────────────────────────────────────────────────────

type statusResponse struct {
	status int
	ref    *openapi3.ResponseRef
}

// response describes one status code. A nil schema means no body.
func response(status int, description string, schema *openapi3.SchemaRef) statusResponse {
	desc := description
	r := &openapi3.Response{Description: &desc}
	if schema != nil {
		r.Content = openapi3.NewContentWithJSONSchemaRef(schema)
	}
	return statusResponse{status: status, ref: &openapi3.ResponseRef{Value: r}}
}

// message describes an error status whose body is the message envelope.
func message(status int, text string) statusResponse {
	return response(status, text, ref("MessageResponse"))
}

func newResponses(entries ...statusResponse) *openapi3.Responses {
	opts := make([]openapi3.NewResponsesOption, 0, len(entries))
	for _, e := range entries {
		opts = append(opts, openapi3.WithStatus(e.status, e.ref))
	}
	return openapi3.NewResponses(opts...)
}
