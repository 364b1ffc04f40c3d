package tracing

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestInitWithoutEndpoint(t *testing.T) {
	os.Unsetenv("OTLP_ENDPOINT")
	shutdown, err := Init(context.Background(), "test")
	if err != nil {
		t.Fatal(err)
	}
	_, span := Tracer.Start(context.Background(), "test")
	if span.IsRecording() {
		t.Error("noop span is recording")
	}
	End(span, errors.New("failed"))
	if err := shutdown(context.Background()); err != nil {
		t.Error(err)
	}
}
