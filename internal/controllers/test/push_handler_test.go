package controllers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bionicotaku/order-ingest/internal/controllers"
	"github.com/bionicotaku/order-ingest/internal/infrastructure/schemaregistry"
	"github.com/bionicotaku/order-ingest/internal/metadata"
	"github.com/bionicotaku/order-ingest/internal/models/vo"
	"github.com/bionicotaku/order-ingest/internal/services"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/require"
)

const orderSchema = `{
  "type": "record",
  "name": "Order",
  "fields": [
    {"name": "order_id", "type": "long"},
    {"name": "sku", "type": "string"}
  ]
}`

func newPushHandler(t *testing.T, out io.Writer, opts controllers.PushOptions) *controllers.PushHandler {
	t.Helper()
	schema, err := schemaregistry.ParseSchema("projects/p/schemas/e_comm", "", orderSchema)
	require.NoError(t, err)
	logger := log.NewStdLogger(out)
	ingest := services.NewIngestService(services.NewDecodeDispatcher(schema), logger)
	return controllers.NewPushHandler(ingest, controllers.NewBaseHandler(opts), logger)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPushHandler_JSONMessage(t *testing.T) {
	var buf bytes.Buffer
	h := newPushHandler(t, &buf, controllers.PushOptions{})

	rec := post(t, h, `{"message": {"data": "eyJvcmRlcl9pZCI6IDF9", "messageId": "m-1"}, "subscription": "projects/p/subscriptions/s"}`)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
	logs := buf.String()
	require.Contains(t, logs, "encoding=JSON")
	require.Contains(t, logs, "message_id=m-1")
	require.Contains(t, logs, "fulfillment_status:PENDING")
	require.Contains(t, logs, "order_id:1")
}

func TestPushHandler_AvroMessage(t *testing.T) {
	codec, err := goavro.NewCodec(orderSchema)
	require.NoError(t, err)
	payload, err := codec.BinaryFromNative(nil, map[string]any{"order_id": int64(42), "sku": "SKU-9"})
	require.NoError(t, err)

	var buf bytes.Buffer
	h := newPushHandler(t, &buf, controllers.PushOptions{})
	rec := post(t, h, `{"message": {"data": "`+base64.StdEncoding.EncodeToString(payload)+`"}}`)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Contains(t, buf.String(), "encoding=AVRO")
	require.Contains(t, buf.String(), "sku:SKU-9")
}

func TestPushHandler_NoMessage(t *testing.T) {
	h := newPushHandler(t, io.Discard, controllers.PushOptions{})

	for name, body := range map[string]string{
		"empty object":   `{}`,
		"empty body":     ``,
		"no message key": `{"subscription": "projects/p/subscriptions/s"}`,
		"null message":   `{"message": null}`,
		"string message": `{"message": "hello"}`,
		"not json":       `message=1`,
		"array":          `[{"message": {}}]`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := post(t, h, body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, "Bad Request: No message", rec.Body.String())
		})
	}
}

func TestPushHandler_BadMessageFormat(t *testing.T) {
	var buf bytes.Buffer
	h := newPushHandler(t, &buf, controllers.PushOptions{})

	cases := map[string]string{
		"undecodable bytes": `{"message": {"data": "` + base64.StdEncoding.EncodeToString([]byte{0xff}) + `"}}`,
		"invalid base64":    `{"message": {"data": "***"}}`,
		"non-string data":   `{"message": {"data": 123}}`,
		"json array":        `{"message": {"data": "` + base64.StdEncoding.EncodeToString([]byte(`[1,2]`)) + `"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := post(t, h, body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, "Bad message format", rec.Body.String())
		})
	}
	require.NotContains(t, buf.String(), "order processed")
}

func TestPushHandler_MissingDataIsEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	h := newPushHandler(t, &buf, controllers.PushOptions{})

	rec := post(t, h, `{"message": {"messageId": "m-empty"}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Bad message format", rec.Body.String())
	require.Contains(t, buf.String(), "failed to parse payload as JSON or Avro")
	require.Contains(t, buf.String(), "payload_bytes=0")
}

func TestPushHandler_OversizedAvroBlock(t *testing.T) {
	schema, err := schemaregistry.ParseSchema("cart", "", `{"type":"record","name":"Cart","fields":[{"name":"order_id","type":"long"},{"name":"items","type":{"type":"array","items":"string"}}]}`)
	require.NoError(t, err)
	ingest := services.NewIngestService(services.NewDecodeDispatcher(schema), log.NewStdLogger(io.Discard))
	h := controllers.NewPushHandler(ingest, controllers.NewBaseHandler(controllers.PushOptions{}), log.NewStdLogger(io.Discard))

	payload := []byte{0x00, 0x80, 0x80, 0x80, 0x80, 0x08}
	rec := post(t, h, `{"message": {"data": "`+base64.StdEncoding.EncodeToString(payload)+`"}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Bad message format", rec.Body.String())
}

func TestPushHandler_NoBodyAnyMethod(t *testing.T) {
	h := newPushHandler(t, io.Discard, controllers.PushOptions{})

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, "Bad Request: No message", rec.Body.String())
		})
	}
}

func TestPushHandler_BodyTooLarge(t *testing.T) {
	h := newPushHandler(t, io.Discard, controllers.PushOptions{MaxBodyBytes: 16})

	rec := post(t, h, `{"message": {"data": "eyJvcmRlcl9pZCI6IDF9"}}`)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPushHandler_InternalError(t *testing.T) {
	stub := &stubIngest{err: errors.New("boom")}
	h := controllers.NewPushHandler(stub, nil, log.NewStdLogger(io.Discard))

	rec := post(t, h, `{"message": {"data": "eyJvcmRlcl9pZCI6IDF9", "messageId": "m-2", "publishTime": "2025-10-26T12:00:00.123Z", "attributes": {"origin": "web"}}, "subscription": "projects/p/subscriptions/s"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, `{"order_id": 1}`, string(stub.payload))
	require.Equal(t, "m-2", stub.meta.MessageID)
	require.Equal(t, "projects/p/subscriptions/s", stub.meta.Subscription)
	require.Equal(t, "web", stub.meta.Attributes["origin"])
	require.Equal(t, metadata.SourcePush, stub.meta.Source)
	require.False(t, stub.meta.PublishTime.IsZero())
}

func TestPushHandler_GeneratesMessageID(t *testing.T) {
	stub := &stubIngest{}
	h := controllers.NewPushHandler(stub, nil, log.NewStdLogger(io.Discard))

	rec := post(t, h, `{"message": {"data": "eyJvcmRlcl9pZCI6IDF9"}}`)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, strings.HasPrefix(stub.meta.MessageID, "local-"), "got %q", stub.meta.MessageID)
}

type stubIngest struct {
	err     error
	payload []byte
	meta    metadata.DeliveryMetadata
}

func (s *stubIngest) Ingest(ctx context.Context, payload []byte) (*vo.DecodedRecord, error) {
	s.payload = payload
	s.meta, _ = controllers.DeliveryMetadataFromContext(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return &vo.DecodedRecord{Encoding: vo.EncodingJSON, Record: vo.Record{}}, nil
}
