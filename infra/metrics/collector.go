package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/fleetpool/core/metrics"
	"github.com/kilianp07/fleetpool/core/monitoring"
	"github.com/kilianp07/fleetpool/infra/logger"
	"github.com/kilianp07/fleetpool/internal/eventbus"
)

// StartReportCollector subscribes to the report bus and records every event
// on sink from a dedicated goroutine, so slow sinks never delay a request.
// It stops when the context is canceled or the bus is closed. The returned
// channel is closed once the collector has exited.
func StartReportCollector(ctx context.Context, bus *eventbus.TypedBus[coremetrics.ReportEvent], sink coremetrics.ReportSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := sink.RecordReport(ev); err != nil {
					log.Errorf("record report %s: %v", ev.RunID, err)
					monitoring.CaptureException(err, map[string]string{"component": "report-collector"})
				}
			}
		}
	}()
	return done
}
