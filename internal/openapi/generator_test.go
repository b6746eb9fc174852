package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// load generates the document and reloads it so every $ref is resolved.
func load(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := Generate("http://localhost:8080/", "test")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	loaded, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return loaded
}

func TestGenerate_Validates(t *testing.T) {
	doc := load(t)
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("document does not validate: %v", err)
	}
	if got := doc.Servers[0].URL; got != "http://localhost:8080/api/v1" {
		t.Errorf("server URL = %q", got)
	}
}

func TestGenerate_EveryRouteDocumented(t *testing.T) {
	doc := load(t)
	for _, route := range Routes() {
		item := doc.Paths.Find(route.Path)
		if item == nil {
			t.Errorf("%s missing", route.Path)
			continue
		}
		op := item.GetOperation(route.Method)
		if op == nil {
			t.Errorf("%s %s missing", route.Method, route.Path)
			continue
		}
		if op.Responses.Status(route.Status) == nil {
			t.Errorf("%s %s: no %d response", route.Method, route.Path, route.Status)
		}
		secured := op.Security != nil && len(*op.Security) > 0
		if secured != route.Auth {
			t.Errorf("%s %s: secured = %v, want %v", route.Method, route.Path, secured, route.Auth)
		}
	}
}

func TestGenerate_UniqueOperationIDs(t *testing.T) {
	seen := map[string]string{}
	for _, route := range Routes() {
		id := operationID(route)
		if prev, ok := seen[id]; ok {
			t.Errorf("operation id %q used by %s and %s %s", id, prev, route.Method, route.Path)
		}
		seen[id] = route.Method + " " + route.Path
	}
}

func TestGenerate_SchemasFollowJSONTags(t *testing.T) {
	doc := load(t)

	admin := doc.Components.Schemas["Admin"].Value
	if _, ok := admin.Properties["_id"]; !ok {
		t.Error("Admin schema missing _id")
	}
	for _, hidden := range []string{"PasswordHash", "password", "otp", "refreshToken"} {
		if _, ok := admin.Properties[hidden]; ok {
			t.Errorf("Admin schema exposes %q", hidden)
		}
	}

	team := doc.Components.Schemas["CreateTeam"].Value
	if _, ok := team.Properties["teamLeaders"]; !ok {
		t.Error("CreateTeam schema missing teamLeaders")
	}
}

func TestOperationID(t *testing.T) {
	tests := []struct {
		route Route
		want  string
	}{
		{Route{Method: http.MethodPost, Path: "/auth/users/verify-otp"}, "post_auth_users_verify_otp"},
		{Route{Method: http.MethodGet, Path: "/companies/{id}"}, "get_companies_id"},
	}
	for _, tt := range tests {
		if got := operationID(tt.route); got != tt.want {
			t.Errorf("operationID(%s %s) = %q, want %q", tt.route.Method, tt.route.Path, got, tt.want)
		}
	}
}
