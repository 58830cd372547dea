package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tabcloner/pkg/transport"
	"github.com/entrhq/tabcloner/pkg/types"
)

func TestClient_FetchPending(t *testing.T) {
	mb := transport.NewMailbox()
	srv := httptest.NewServer(NewServer(mb, Options{}).Handler())
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second)

	snap, err := client.FetchPending(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap, "empty relay")

	mb.Put(&types.Snapshot{Groups: []types.Group{{ID: 3, Title: "G", Tabs: []types.TabRef{{URL: "https://x.example"}}}}})

	status, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.HasPendingData)

	snap, err = client.FetchPending(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 3, snap.Groups[0].ID)
	assert.False(t, mb.Pending())
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		errSub  string
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "down", http.StatusServiceUnavailable)
			},
			errSub: "503",
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
			errSub: "decode",
		},
		{
			name: "unexpected status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"status":"weird"}`))
			},
			errSub: "unexpected relay status",
		},
		{
			name: "success without data",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"status":"success"}`))
			},
			errSub: "without data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).FetchPending(context.Background())
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.errSub), err.Error())
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).FetchPending(context.Background())
	assert.ErrorContains(t, err, "failed to reach relay")
}
