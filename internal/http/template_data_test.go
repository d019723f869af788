package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	domainauth "github.com/flowstate/flowstate-dashboard/internal/domain/auth"
)

func TestNewTemplateData(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	meta := PageMeta{
		Title:       "Test Title",
		PageTitle:   "Test Page",
		CurrentPage: "test",
	}

	data := NewTemplateData(r, meta).Build()

	if data["Title"] != "Test Title" {
		t.Errorf("Title = %v, want %v", data["Title"], "Test Title")
	}
	if data["PageTitle"] != "Test Page" {
		t.Errorf("PageTitle = %v, want %v", data["PageTitle"], "Test Page")
	}
	if data["CurrentPage"] != "test" {
		t.Errorf("CurrentPage = %v, want %v", data["CurrentPage"], "test")
	}
	if data["IsAuthenticated"] != false {
		t.Errorf("IsAuthenticated = %v, want %v", data["IsAuthenticated"], false)
	}
	if _, ok := data["User"]; ok {
		t.Errorf("User should be absent for anonymous requests")
	}
	if errs, ok := data["Errors"].(map[string]string); !ok || len(errs) != 0 {
		t.Errorf("Errors = %v, want empty map", data["Errors"])
	}
}

func TestNewTemplateData_AuthenticatedUser(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r = r.WithContext(SetUserInContext(r.Context(), &domainauth.UserProfile{ID: 1, Username: "ana"}))

	data := NewTemplateData(r, dashboardMeta).Build()

	if data["IsAuthenticated"] != true {
		t.Errorf("IsAuthenticated = %v, want true", data["IsAuthenticated"])
	}
	if data["User"] == nil {
		t.Fatalf("User missing from template data")
	}
}

func TestTemplateDataBuilder_WithErrorAndFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/register", nil)

	data := NewTemplateData(r, registerMeta).
		WithError("Please fix the errors below.").
		WithFieldErrors(map[string]string{"username": "Username is required."}).
		With("Username", "").
		Build()

	if data["Error"] != true {
		t.Errorf("Error = %v, want true", data["Error"])
	}
	if data["ErrorMessage"] != "Please fix the errors below." {
		t.Errorf("ErrorMessage = %v", data["ErrorMessage"])
	}
	errs, _ := data["Errors"].(map[string]string)
	if errs["username"] != "Username is required." {
		t.Errorf("Errors[username] = %q", errs["username"])
	}
	if _, ok := data["Username"]; !ok {
		t.Errorf("custom field not set")
	}
}

func TestTemplateDataBuilder_EmptyFieldErrorsKeepDefault(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/register", nil)

	data := NewTemplateData(r, registerMeta).WithFieldErrors(nil).Build()

	if _, ok := data["Errors"].(map[string]string); !ok {
		t.Errorf("Errors should remain a map so templates can index it")
	}
}
