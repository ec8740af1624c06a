package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/contact-relay/internal/client"
	"github.com/Zachkp/contact-relay/internal/contact"
)

// newRelay serves a fixed answer and forwards each decoded submission to the
// returned channel when there is room.
func newRelay(t *testing.T, status int, message string) (*httptest.Server, *atomic.Int32, <-chan contact.Submission) {
	t.Helper()

	var calls atomic.Int32
	got := make(chan contact.Submission, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, client.ContactPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var sub contact.Submission
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sub))
		select {
		case got <- sub:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, got
}

func fill(f *client.Form) {
	f.Name = "Ada"
	f.Email = "ada@example.com"
	f.Message = "Hello"
}

func TestClient_Send(t *testing.T) {
	t.Parallel()

	t.Run("posts json", func(t *testing.T) {
		t.Parallel()

		srv, calls, got := newRelay(t, http.StatusOK, "Message sent successfully")

		sub := contact.Submission{Name: "Ada", Email: "ada@example.com", Message: "Hello"}
		require.NoError(t, client.New(srv.URL+"/").Send(context.Background(), sub))
		assert.Equal(t, sub, <-got)
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("non-2xx is a status error", func(t *testing.T) {
		t.Parallel()

		srv, calls, _ := newRelay(t, http.StatusInternalServerError, "Error sending message")

		err := client.New(srv.URL).Send(context.Background(), contact.Submission{Name: "Ada", Email: "a@b.c", Message: "Hi"})
		var statusErr *client.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Equal(t, "Error sending message", statusErr.Message)
		assert.EqualValues(t, 1, calls.Load(), "no retry")
	})
}

func TestForm_Submit(t *testing.T) {
	t.Parallel()

	t.Run("success clears fields", func(t *testing.T) {
		t.Parallel()

		srv, _, _ := newRelay(t, http.StatusOK, "Message sent successfully")
		f := client.NewForm(client.New(srv.URL))
		fill(f)

		notice, err := f.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, client.NoticeSuccess, notice.Kind)
		assert.Equal(t, client.NoticeSentText, notice.Text)
		assert.Empty(t, f.Name)
		assert.Empty(t, f.Email)
		assert.Empty(t, f.Message)
		assert.False(t, f.Submitting())
	})

	t.Run("failure keeps fields", func(t *testing.T) {
		t.Parallel()

		srv, _, _ := newRelay(t, http.StatusInternalServerError, "Error sending message")
		f := client.NewForm(client.New(srv.URL))
		fill(f)

		notice, err := f.Submit(context.Background())
		require.Error(t, err)
		assert.Equal(t, client.NoticeError, notice.Kind)
		assert.Equal(t, client.NoticeFailedText, notice.Text)
		assert.Equal(t, "Ada", f.Name)
		assert.Equal(t, "ada@example.com", f.Email)
		assert.Equal(t, "Hello", f.Message)
		assert.False(t, f.Submitting())
	})

	t.Run("network failure keeps fields", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		f := client.NewForm(client.New(url))
		fill(f)

		notice, err := f.Submit(context.Background())
		require.Error(t, err)
		assert.Equal(t, client.NoticeError, notice.Kind)
		assert.Equal(t, "Ada", f.Name)
		assert.False(t, f.Submitting())
	})

	t.Run("missing fields never issue a request", func(t *testing.T) {
		t.Parallel()

		srv, calls, _ := newRelay(t, http.StatusOK, "Message sent successfully")
		for _, modify := range []func(*client.Form){
			func(f *client.Form) { f.Name = "" },
			func(f *client.Form) { f.Email = "" },
			func(f *client.Form) { f.Message = "" },
		} {
			f := client.NewForm(client.New(srv.URL))
			fill(f)
			modify(f)

			notice, err := f.Submit(context.Background())
			require.ErrorIs(t, err, contact.ErrMissingFields)
			assert.Zero(t, notice)
		}
		assert.Zero(t, calls.Load())
	})

	t.Run("whitespace-only message is sent", func(t *testing.T) {
		t.Parallel()

		srv, calls, got := newRelay(t, http.StatusOK, "Message sent successfully")
		f := client.NewForm(client.New(srv.URL))
		fill(f)
		f.Message = "   "

		notice, err := f.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, client.NoticeSuccess, notice.Kind)
		assert.EqualValues(t, 1, calls.Load())
		assert.Equal(t, "   ", (<-got).Message)
	})

	t.Run("rejects overlapping submits", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			<-release
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)

		f := client.NewForm(client.New(srv.URL))
		fill(f)

		done := make(chan error, 1)
		go func() {
			_, err := f.Submit(context.Background())
			done <- err
		}()

		require.Eventually(t, f.Submitting, 2*time.Second, 5*time.Millisecond)

		_, err := f.Submit(context.Background())
		require.ErrorIs(t, err, client.ErrSubmitInProgress)

		close(release)
		require.NoError(t, <-done)
		assert.False(t, f.Submitting())
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("cancelled context re-enables the form", func(t *testing.T) {
		t.Parallel()

		srv, _, _ := newRelay(t, http.StatusOK, "Message sent successfully")
		f := client.NewForm(client.New(srv.URL))
		fill(f)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.Submit(ctx)
		require.True(t, errors.Is(err, context.Canceled))
		assert.False(t, f.Submitting())
		assert.Equal(t, "Ada", f.Name)
	})
}

func TestNoticeKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", client.NoticeSuccess.String())
	assert.Equal(t, "error", client.NoticeError.String())
	assert.Equal(t, "unknown", client.NoticeKind(0).String())
}
