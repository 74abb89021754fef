package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/infrastructure/auth"
)

func TestAuthenticate(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := manager.Generate(&domain.Actor{ID: "sup-1", Name: "Sup One", Role: domain.RoleSupervisor, AgencyID: "agency-1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tests := []struct {
		name      string
		required  bool
		header    string
		wantCode  int
		wantActor string
	}{
		{name: "required without header", required: true, wantCode: http.StatusUnauthorized},
		{name: "optional without header", required: false, wantCode: http.StatusOK},
		{name: "malformed header", required: false, header: "Token abc", wantCode: http.StatusUnauthorized},
		{name: "bad token", required: false, header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "valid token", required: true, header: "Bearer " + token, wantCode: http.StatusOK, wantActor: "sup-1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotActor *domain.Actor
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotActor, _ = domain.ActorFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/rates", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			Authenticate(manager, tc.required)(next).ServeHTTP(rr, req)

			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			if tc.wantActor == "" {
				if gotActor != nil {
					t.Fatalf("expected no actor, got %+v", gotActor)
				}
				return
			}
			if gotActor == nil || gotActor.ID != tc.wantActor || gotActor.Role != domain.RoleSupervisor || gotActor.AgencyID != "agency-1" {
				t.Fatalf("unexpected actor %+v", gotActor)
			}
		})
	}
}
