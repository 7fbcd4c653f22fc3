package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/messages/{message_id}", "404"))
	RecordRequest("GET", "/messages/{message_id}", 404, 0.01)
	after := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/messages/{message_id}", "404"))
	if after != before+1 {
		t.Errorf("counter: got %v, want %v", after, before+1)
	}
}
