package openai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	calls     int
	errs      []error
	reverse   bool
	lastModel goopenai.EmbeddingModel
}

func (f *fakeAPI) CreateEmbeddings(_ context.Context, conv goopenai.EmbeddingRequestConverter) (goopenai.EmbeddingResponse, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return goopenai.EmbeddingResponse{}, err
		}
	}
	req := conv.Convert()
	f.lastModel = req.Model
	inputs := req.Input.([]string)
	resp := goopenai.EmbeddingResponse{}
	for i, in := range inputs {
		resp.Data = append(resp.Data, goopenai.Embedding{Index: i, Embedding: []float32{float32(len(in)), float32(i)}})
	}
	if f.reverse {
		for i, j := 0, len(resp.Data)-1; i < j; i, j = i+1, j-1 {
			resp.Data[i], resp.Data[j] = resp.Data[j], resp.Data[i]
		}
	}
	return resp, nil
}

func testClient(api *fakeAPI) *Client {
	c := newClient(api, Config{MaxRetries: 3})
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestClient_OrdersByIndex(t *testing.T) {
	api := &fakeAPI{reverse: true}
	c := testClient(api)
	vecs, err := c.Embed(context.Background(), []string{"a", "bbb", "cc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {3, 1}, {2, 2}}, vecs)
	assert.Equal(t, goopenai.SmallEmbedding3, api.lastModel)
	assert.Equal(t, "openai/text-embedding-3-small", c.Name())
}

func TestClient_RetriesTransientErrors(t *testing.T) {
	api := &fakeAPI{errs: []error{
		&goopenai.APIError{HTTPStatusCode: http.StatusTooManyRequests},
		&goopenai.RequestError{HTTPStatusCode: http.StatusBadGateway},
		errors.New("connection reset"),
	}}
	vecs, err := testClient(api).Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Len(t, vecs, 1)
	assert.Equal(t, 4, api.calls)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	api := &fakeAPI{errs: []error{&goopenai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}}}
	_, err := testClient(api).Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Equal(t, 1, api.calls)
}

func TestClient_GivesUp(t *testing.T) {
	boom := errors.New("down")
	api := &fakeAPI{errs: []error{boom, boom, boom, boom, boom}}
	_, err := testClient(api).Embed(context.Background(), []string{"x"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 4, api.calls)
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("SEMSEARCH_TEST_NO_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "SEMSEARCH_TEST_NO_KEY"})
	assert.Error(t, err)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, retryDelay(0))
	assert.Equal(t, 800*time.Millisecond, retryDelay(2))
	assert.Equal(t, 5*time.Second, retryDelay(10))
}
