package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsHTMLMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "42", r.PostForm.Get("chat_id"))
		assert.Equal(t, "<b>hi</b>", r.PostForm.Get("text"))
		assert.Equal(t, "HTML", r.PostForm.Get("parse_mode"))
		assert.Equal(t, "true", r.PostForm.Get("disable_web_page_preview"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, NewNotifier("TOKEN", srv.URL+"/").Send(context.Background(), 42, "<b>hi</b>"))
}

func TestSendReportsAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer srv.Close()

	err := NewNotifier("TOKEN", srv.URL).Send(context.Background(), 1, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot was blocked")
	assert.NotContains(t, err.Error(), "TOKEN")
}

func TestSendWithoutTokenFails(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, NewNotifier("", "").Send(context.Background(), 1, "x"), ErrMisconfigured)
}
