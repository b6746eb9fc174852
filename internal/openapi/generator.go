// Package openapi builds the OpenAPI document describing the staffhub HTTP
// API. Component schemas are reflected from the Go request and model types
// so the document follows the code.
package openapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/service"
)

// Security requirement names.
const (
	cookieAuth = "cookieAuth"
	bearerAuth = "bearerAuth"
)

// Route describes one documented endpoint.
type Route struct {
	Method  string
	Path    string // relative to /api/v1
	Tag     string
	Summary string
	// Auth marks routes behind the auth gate.
	Auth bool
	// Request names the body schema. Response names the success schema when
	// the route answers with something other than the envelope.
	Request  string
	Response string
	Status   int
}

// namedTypes are reflected into component schemas.
var namedTypes = map[string]interface{}{
	"Admin":              model.Admin{},
	"User":               model.User{},
	"Company":            model.Company{},
	"Team":               model.Team{},
	"OTPAck":             model.OTPAck{},
	"TokenPair":          model.TokenPair{},
	"RegisterAdmin":      service.RegisterAdminInput{},
	"CreateUser":         service.CreateUserInput{},
	"UserUpdate":         service.UserUpdate{},
	"CompanyInput":       service.CompanyInput{},
	"CompanyPatch":       service.CompanyPatch{},
	"CreateTeam":         service.CreateTeamInput{},
	"LoginRequest":       loginBody{},
	"VerifyOTPRequest":   verifyOTPBody{},
	"ForgotRequest":      forgotPasswordBody{},
	"ResetRequest":       resetPasswordBody{},
	"RefreshRequest":     refreshBody{},
	"ChangePassword":     changePasswordBody{},
	"AdminProfilePatch":  adminProfileBody{},
	"DeleteUsersRequest": deleteUsersBody{},
}

// Routes lists every endpoint of the API.
func Routes() []Route {
	var routes []Route
	for _, kind := range []struct{ prefix, tag string }{
		{"/auth/super-admins", "super-admin auth"},
		{"/auth/users", "user auth"},
	} {
		routes = append(routes,
			Route{Method: http.MethodPost, Path: kind.prefix + "/login", Tag: kind.tag, Summary: "Check the password and mail an OTP", Request: "LoginRequest", Response: "OTPAck", Status: http.StatusOK},
			Route{Method: http.MethodPost, Path: kind.prefix + "/verify-otp", Tag: kind.tag, Summary: "Verify the OTP and set token cookies", Request: "VerifyOTPRequest", Status: http.StatusOK},
			Route{Method: http.MethodPost, Path: kind.prefix + "/forgot-password", Tag: kind.tag, Summary: "Mail a password reset OTP", Request: "ForgotRequest", Response: "OTPAck", Status: http.StatusOK},
			Route{Method: http.MethodPatch, Path: kind.prefix + "/update-forgot-password", Tag: kind.tag, Summary: "Set a new password with the reset OTP", Request: "ResetRequest", Status: http.StatusOK},
			Route{Method: http.MethodPost, Path: kind.prefix + "/refresh-token", Tag: kind.tag, Summary: "Rotate the token pair", Request: "RefreshRequest", Status: http.StatusOK},
			Route{Method: http.MethodPost, Path: kind.prefix + "/logout", Tag: kind.tag, Summary: "Clear the refresh token and cookies", Auth: true, Status: http.StatusOK},
		)
	}
	return append(routes,
		Route{Method: http.MethodPost, Path: "/auth/super-admins/register", Tag: "super-admin auth", Summary: "Register a super-admin", Request: "RegisterAdmin", Status: http.StatusCreated},
		Route{Method: http.MethodPost, Path: "/auth/users/create", Tag: "users", Summary: "Create a user", Auth: true, Request: "CreateUser", Status: http.StatusCreated},

		Route{Method: http.MethodGet, Path: "/super-admins", Tag: "super-admins", Summary: "List super-admins", Auth: true, Status: http.StatusOK},
		Route{Method: http.MethodGet, Path: "/super-admins/{id}", Tag: "super-admins", Summary: "Get a super-admin", Auth: true, Status: http.StatusOK},
		Route{Method: http.MethodPatch, Path: "/super-admins/me", Tag: "super-admins", Summary: "Update the caller's profile", Auth: true, Request: "AdminProfilePatch", Status: http.StatusOK},
		Route{Method: http.MethodPost, Path: "/super-admins/password", Tag: "super-admins", Summary: "Change the caller's password", Auth: true, Request: "ChangePassword", Status: http.StatusOK},
		Route{Method: http.MethodDelete, Path: "/super-admins/{id}", Tag: "super-admins", Summary: "Delete a super-admin and its companies", Auth: true, Status: http.StatusOK},

		Route{Method: http.MethodGet, Path: "/users", Tag: "users", Summary: "List users", Auth: true, Status: http.StatusOK},
		Route{Method: http.MethodGet, Path: "/users/{id}", Tag: "users", Summary: "Get a user", Auth: true, Status: http.StatusOK},
		Route{Method: http.MethodPatch, Path: "/users/{id}", Tag: "users", Summary: "Update a user", Auth: true, Request: "UserUpdate", Status: http.StatusOK},
		Route{Method: http.MethodPost, Path: "/users/password", Tag: "users", Summary: "Change the caller's password", Auth: true, Request: "ChangePassword", Status: http.StatusOK},
		Route{Method: http.MethodDelete, Path: "/users", Tag: "users", Summary: "Delete users", Auth: true, Request: "DeleteUsersRequest", Status: http.StatusOK},

		Route{Method: http.MethodPost, Path: "/companies", Tag: "companies", Summary: "Create the company", Auth: true, Request: "CompanyInput", Status: http.StatusCreated},
		Route{Method: http.MethodGet, Path: "/companies", Tag: "companies", Summary: "List companies", Auth: true, Status: http.StatusOK},
		Route{Method: http.MethodGet, Path: "/companies/{id}", Tag: "companies", Summary: "Get a company", Auth: true, Status: http.StatusOK},
		Route{Method: http.MethodPatch, Path: "/companies/{id}", Tag: "companies", Summary: "Update a company", Auth: true, Request: "CompanyPatch", Status: http.StatusOK},
		Route{Method: http.MethodDelete, Path: "/companies/{id}", Tag: "companies", Summary: "Delete a company with its users and teams", Auth: true, Status: http.StatusOK},

		Route{Method: http.MethodPost, Path: "/teams", Tag: "teams", Summary: "Create a team", Auth: true, Request: "CreateTeam", Status: http.StatusCreated},
		Route{Method: http.MethodGet, Path: "/teams", Tag: "teams", Summary: "List teams", Auth: true, Status: http.StatusOK},
		Route{Method: http.MethodGet, Path: "/teams/{id}", Tag: "teams", Summary: "Get a team", Auth: true, Status: http.StatusOK},
	)
}

// Generate builds the document for the API served at baseURL.
func Generate(baseURL, version string) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "staffhub API",
			Description: "Multi-tenant HR backend: OTP login, super-admins, users, companies, and teams.",
			Version:     version,
		},
		Servers: openapi3.Servers{
			{URL: strings.TrimSuffix(baseURL, "/") + "/api/v1"},
		},
		Paths: openapi3.NewPaths(),
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{
		cookieAuth: &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{
				Type:        "apiKey",
				In:          "cookie",
				Name:        "accessToken",
				Description: "Access token cookie set by verify-otp and refresh-token",
			},
		},
		bearerAuth: &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "JWT",
			},
		},
	}
	doc.Components = &components

	for name, v := range namedTypes {
		ref, err := openapi3gen.NewSchemaRefForValue(v, nil, openapi3gen.UseAllExportedFields())
		if err != nil {
			return nil, fmt.Errorf("reflect schema %s: %w", name, err)
		}
		doc.Components.Schemas[name] = ref
	}
	doc.Components.Schemas["Response"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"message": openapi3.NewStringSchema().NewRef(),
				"success": openapi3.NewBoolSchema().NewRef(),
				"data":    openapi3.NewObjectSchema().NewRef(),
			},
			Required: []string{"success"},
		},
	}

	for _, route := range Routes() {
		doc.AddOperation(route.Path, route.Method, operation(route))
	}
	return doc, nil
}

// operation builds the OpenAPI operation for route.
func operation(route Route) *openapi3.Operation {
	op := &openapi3.Operation{
		Tags:        []string{route.Tag},
		Summary:     route.Summary,
		OperationID: operationID(route),
		Responses:   newResponses(route),
	}
	if route.Auth {
		op.Security = &openapi3.SecurityRequirements{
			{cookieAuth: {}},
			{bearerAuth: {}},
		}
	}
	if route.Request != "" {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(route.Method != http.MethodDelete).
				WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/"+route.Request, nil)),
		}
	}
	if strings.Contains(route.Path, "{id}") {
		op.Parameters = openapi3.Parameters{
			{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())},
		}
	}
	return op
}

func newResponses(route Route) *openapi3.Responses {
	responses := openapi3.NewResponses()

	schema := openapi3.NewSchemaRef("#/components/schemas/Response", nil)
	if route.Response != "" {
		schema = openapi3.NewSchemaRef("#/components/schemas/"+route.Response, nil)
	}
	responses.Set(fmt.Sprint(route.Status), &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription(http.StatusText(route.Status)).
			WithContent(openapi3.NewContentWithJSONSchemaRef(schema)),
	})

	errorRef := openapi3.NewSchemaRef("#/components/schemas/Response", nil)
	codes := []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError}
	if route.Auth {
		codes = append(codes, http.StatusUnauthorized, http.StatusForbidden)
	}
	for _, code := range codes {
		responses.Set(fmt.Sprint(code), &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription(http.StatusText(code)).
				WithContent(openapi3.NewContentWithJSONSchemaRef(errorRef)),
		})
	}
	return responses
}

// operationID derives a unique id such as "post_auth_users_login".
func operationID(route Route) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(route.Method))
	for _, part := range strings.Split(strings.Trim(route.Path, "/"), "/") {
		part = strings.Trim(part, "{}")
		b.WriteByte('_')
		b.WriteString(strings.ReplaceAll(part, "-", "_"))
	}
	return b.String()
}
