package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/domain/analytics"
	"github.com/codelens/taskhub/internal/http/handlers"
)

type fakeAnalyticsStore struct {
	summaryFn func(ctx context.Context, ownerID string) (analytics.Summary, error)
}

func (f *fakeAnalyticsStore) Summary(ctx context.Context, q db.DBTX, ownerID string) (analytics.Summary, error) {
	if f.summaryFn != nil {
		return f.summaryFn(ctx, ownerID)
	}

	return analytics.Summary{}, nil
}

func TestGetAnalyticsHandler(t *testing.T) {
	owner := newUUID()

	tests := []struct {
		name           string
		storeSetup     func(*fakeAnalyticsStore)
		wantStatusCode int
	}{
		{
			name: "success",
			storeSetup: func(f *fakeAnalyticsStore) {
				f.summaryFn = func(ctx context.Context, ownerID string) (analytics.Summary, error) {
					if ownerID != owner {
						return analytics.Summary{}, errors.New("summary scoped to the wrong owner")
					}

					return analytics.Summary{
						Projects:      analytics.ProjectBuckets{Active: 2, Completed: 1},
						Tasks:         analytics.TaskBuckets{Todo: 4, Done: 3},
						TotalProjects: 4, // one project has a legacy status outside the buckets
						TotalTasks:    7,
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "store_error",
			storeSetup: func(f *fakeAnalyticsStore) {
				f.summaryFn = func(ctx context.Context, ownerID string) (analytics.Summary, error) {
					return analytics.Summary{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeAnalyticsStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h := handlers.NewAnalyticsHandler(store, nil, nil)
			r := setupRouter(http.MethodGet, "/projects/analytics", withOwner(owner), h.GetAnalytics)

			req := httptest.NewRequest(http.MethodGet, "/projects/analytics", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp struct {
				Data analytics.Summary `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			// totals may exceed the bucket sums, never the other way around
			bucketSum := resp.Data.Projects.Active + resp.Data.Projects.Completed +
				resp.Data.Projects.Planning + resp.Data.Projects.OnHold
			if resp.Data.TotalProjects < bucketSum {
				t.Fatalf("project total %d below bucket sum %d", resp.Data.TotalProjects, bucketSum)
			}

			if resp.Data.TotalTasks != 7 {
				t.Fatalf("got total tasks %d, want 7", resp.Data.TotalTasks)
			}
		})
	}
}

func TestHealthHandlers(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		h := handlers.NewHealthHandler(func() error { return nil })
		r := setupRouter(http.MethodGet, "/readyz", h.Readyz)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("db_down", func(t *testing.T) {
		h := handlers.NewHealthHandler(func() error { return errors.New("down") })
		r := setupRouter(http.MethodGet, "/readyz", h.Readyz)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})
}
