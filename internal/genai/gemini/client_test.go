package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeGemini 模拟 generateContent 接口，记录收到的请求
type fakeGemini struct {
	t      *testing.T
	mu     sync.Mutex
	calls  []recordedCall
	status int
	body   string
}

type recordedCall struct {
	Path   string
	APIKey string
	Body   map[string]any
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	require.NoError(f.t, err)
	var body map[string]any
	require.NoError(f.t, json.Unmarshal(raw, &body))

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		Path:   r.URL.Path,
		APIKey: r.Header.Get("x-goog-api-key"),
		Body:   body,
	})
	status, resp := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp)
}

func (f *fakeGemini) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

func (f *fakeGemini) lastCall() recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.calls)
	return f.calls[len(f.calls)-1]
}

func newTestClient(t *testing.T, key *string) (*Client, *fakeGemini) {
	t.Helper()
	fake := &fakeGemini{t: t, status: http.StatusOK, body: textResponse("ok")}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		Keys:            KeySourceFunc(func() string { return *key }),
		BaseURL:         srv.URL + "/",
		HTTPClient:      srv.Client(),
		TextModel:       "flash-test",
		StructuredModel: "pro-test",
		ImageModel:      "image-test",
		EditModel:       "edit-test",
		Temperature:     0.8,
	})
	require.NoError(t, err)
	return client, fake
}

func textResponse(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	})
	return string(b)
}

func imageResponse(data []byte) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role": "model",
					"parts": []any{
						map[string]any{"text": "here is your image"},
						map[string]any{"inlineData": map[string]any{
							"mimeType": "image/png",
							"data":     base64.StdEncoding.EncodeToString(data),
						}},
					},
				},
			},
		},
	})
	return string(b)
}

const notFoundBody = `{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{TextModel: "a", StructuredModel: "b", ImageModel: "c", EditModel: "d"})
	assert.Error(t, err)

	_, err = NewClient(Config{Keys: KeySourceFunc(func() string { return "k" })})
	assert.Error(t, err)
}

func TestInvoke_RoutesPlainTextToFastModel(t *testing.T) {
	key := "key-1"
	client, fake := newTestClient(t, &key)
	fake.respond(http.StatusOK, textResponse("Scene 1 | a cat"))

	text, err := client.Invoke(context.Background(), Text("write scenes"), false, nil)
	require.NoError(t, err)
	assert.Equal(t, "Scene 1 | a cat", text)

	call := fake.lastCall()
	assert.Contains(t, call.Path, "flash-test:generateContent")
	assert.Equal(t, "key-1", call.APIKey)

	genCfg, _ := call.Body["generationConfig"].(map[string]any)
	require.NotNil(t, genCfg)
	assert.InDelta(t, 0.8, genCfg["temperature"], 0.001)
	assert.Nil(t, genCfg["responseMimeType"])
}

func TestInvoke_StructuredUsesProModelAndSchema(t *testing.T) {
	key := "key-1"
	client, fake := newTestClient(t, &key)
	fake.respond(http.StatusOK, textResponse(`{"title":"t"}`))

	schema := StringObject("title", "description", "hashtags")
	text, err := client.Invoke(context.Background(), Text("seo"), true, schema)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"t"}`, text)

	call := fake.lastCall()
	assert.Contains(t, call.Path, "pro-test:generateContent")
	genCfg := call.Body["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	require.NotNil(t, genCfg["responseSchema"])
	sch := genCfg["responseSchema"].(map[string]any)
	assert.ElementsMatch(t, []any{"title", "description", "hashtags"}, sch["required"])
}

func TestInvoke_StructuredWithoutSchema(t *testing.T) {
	key := "key-1"
	client, fake := newTestClient(t, &key)

	_, err := client.Invoke(context.Background(), Text("x"), true, nil)
	require.NoError(t, err)

	genCfg := fake.lastCall().Body["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	assert.Nil(t, genCfg["responseSchema"])
}

func TestInvoke_MultipartAttachments(t *testing.T) {
	key := "key-1"
	client, fake := newTestClient(t, &key)

	payload := Payload{
		Text: "analyze frames",
		Attachments: []InlineData{
			{MIMEType: "image/jpeg", Data: []byte("frame-0")},
			{MIMEType: "image/png", Data: []byte("frame-100")},
		},
	}
	_, err := client.Invoke(context.Background(), payload, false, nil)
	require.NoError(t, err)

	contents := fake.lastCall().Body["contents"].([]any)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 3)
	assert.Equal(t, "analyze frames", parts[0].(map[string]any)["text"])
	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/jpeg", inline["mimeType"])
}

func TestInvoke_EmptyBodyIsNotAnError(t *testing.T) {
	key := "key-1"
	client, fake := newTestClient(t, &key)
	fake.respond(http.StatusOK, `{"candidates":[]}`)

	text, err := client.Invoke(context.Background(), Text("x"), false, nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestInvoke_RemoteErrorPassesThrough(t *testing.T) {
	key := "key-1"
	client, fake := newTestClient(t, &key)
	fake.respond(http.StatusNotFound, notFoundBody)

	_, err := client.Invoke(context.Background(), Text("x"), false, nil)
	require.Error(t, err)
	assert.True(t, IsAuthorizationError(err))
	assert.Contains(t, err.Error(), "Requested entity was not found")
}

func TestInvoke_QuotaErrorIsNotAuthorization(t *testing.T) {
	key := "key-1"
	client, fake := newTestClient(t, &key)
	fake.respond(http.StatusTooManyRequests, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)

	_, err := client.Invoke(context.Background(), Text("x"), false, nil)
	require.Error(t, err)
	assert.False(t, IsAuthorizationError(err))
}

func TestInvoke_NoKeySelected(t *testing.T) {
	key := ""
	client, fake := newTestClient(t, &key)

	_, err := client.Invoke(context.Background(), Text("x"), false, nil)
	assert.ErrorIs(t, err, ErrNoCredential)
	assert.True(t, IsAuthorizationError(err))
	fake.mu.Lock()
	assert.Empty(t, fake.calls)
	fake.mu.Unlock()
}

func TestInvoke_PicksUpReselectedKey(t *testing.T) {
	key := "old-key"
	client, fake := newTestClient(t, &key)

	_, err := client.Invoke(context.Background(), Text("x"), false, nil)
	require.NoError(t, err)
	assert.Equal(t, "old-key", fake.lastCall().APIKey)

	key = "new-key"
	_, err = client.Invoke(context.Background(), Text("x"), false, nil)
	require.NoError(t, err)
	assert.Equal(t, "new-key", fake.lastCall().APIKey)
}

func TestInvokeImage_ReturnsPNGDataURI(t *testing.T) {
	key := "key-1"
	client, fake := newTestClient(t, &key)
	fake.respond(http.StatusOK, imageResponse([]byte("png-bytes")))

	uri, err := client.InvokeImage(context.Background(), "a banana", "2K", "16:9")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("png-bytes")), uri)

	call := fake.lastCall()
	assert.Contains(t, call.Path, "image-test:generateContent")
	genCfg := call.Body["generationConfig"].(map[string]any)
	imgCfg := genCfg["imageConfig"].(map[string]any)
	assert.Equal(t, "16:9", imgCfg["aspectRatio"])
	assert.Equal(t, "2K", imgCfg["imageSize"])

	parts := call.Body["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "High-end professional thumbnail art: a banana", parts[0].(map[string]any)["text"])
}

func TestInvokeImage_NoImagePartIsDegradedNotError(t *testing.T) {
	key := "key-1"
	client, fake := newTestClient(t, &key)
	fake.respond(http.StatusOK, textResponse("I can only describe images on this plan"))

	uri, err := client.InvokeImage(context.Background(), "a banana", "1K", "1:1")
	require.NoError(t, err)
	assert.Empty(t, uri)
}

func TestEditImage_SendsSourceThenInstruction(t *testing.T) {
	key := "key-1"
	client, fake := newTestClient(t, &key)
	fake.respond(http.StatusOK, imageResponse([]byte("edited")))

	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("original"))
	uri, err := client.EditImage(context.Background(), src, "make it red")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	call := fake.lastCall()
	assert.Contains(t, call.Path, "edit-test:generateContent")
	parts := call.Body["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	inline := parts[0].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/png", inline["mimeType"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("original")), inline["data"])
	assert.Equal(t, "make it red", parts[1].(map[string]any)["text"])
}

func TestEditImage_AcceptsBareBase64(t *testing.T) {
	key := "key-1"
	client, fake := newTestClient(t, &key)
	fake.respond(http.StatusOK, imageResponse([]byte("edited")))

	_, err := client.EditImage(context.Background(), base64.StdEncoding.EncodeToString([]byte("raw")), "crop")
	require.NoError(t, err)
}

func TestEditImage_InvalidSource(t *testing.T) {
	key := "key-1"
	client, _ := newTestClient(t, &key)

	_, err := client.EditImage(context.Background(), "data:image/png;base64,@@@", "crop")
	assert.Error(t, err)
	assert.False(t, IsAuthorizationError(err))
}

func TestIsAuthorizationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no credential", ErrNoCredential, true},
		{"wrapped no credential", fmt.Errorf("call: %w", ErrNoCredential), true},
		{"api not found with marker", genai.APIError{Code: 404, Status: "NOT_FOUND", Message: "Requested entity was not found."}, true},
		{"api not found other entity", genai.APIError{Code: 404, Status: "NOT_FOUND", Message: "models/foo is not found"}, false},
		{"api unauthenticated", genai.APIError{Code: 401, Status: "UNAUTHENTICATED", Message: "bad"}, true},
		{"api key invalid reason", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid", Details: []map[string]any{{"reason": "API_KEY_INVALID"}}}, true},
		{"api quota", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}, false},
		{"plain message marker", errors.New("Error: Requested entity was not found."), true},
		{"plain other", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthorizationError(tt.err))
		})
	}
}
