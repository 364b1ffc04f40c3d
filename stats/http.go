package stats

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omniscale/osmdoc/log"
)

// StartHttpPProf serves /metrics and the pprof handlers on bind.
func StartHttpPProf(bind string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Println("[error]", http.ListenAndServe(bind, nil))
	}()
	log.Printf("[info] Serving metrics and pprof on http://%s/", bind)
}
