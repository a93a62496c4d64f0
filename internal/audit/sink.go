package audit

import "context"

//go:generate mockgen -source=sink.go -destination=sink_mock.go -package=audit
type Sink interface {
	Record(ctx context.Context, e Event) error
}
