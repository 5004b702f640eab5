package recommender

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCServiceName is the service name reported by the gRPC health server.
const GRPCServiceName = "crop.Recommender"

// WatchHealth mirrors the breaker state into hs every interval until ctx is done:
// NOT_SERVING while any upstream breaker is open.
func WatchHealth(ctx context.Context, rec *Recommender, hs *health.Server, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	update := func() {
		st := healthpb.HealthCheckResponse_SERVING
		for _, s := range rec.Breakers() {
			if s == gobreaker.StateOpen {
				st = healthpb.HealthCheckResponse_NOT_SERVING
				break
			}
		}
		hs.SetServingStatus(GRPCServiceName, st)
		hs.SetServingStatus("", st)
	}
	update()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-t.C:
			update()
		}
	}
}
