package service

import (
	"os"
	"testing"

	"github.com/chrisgermon/form-ordering-sub000/pkg/config"
	"github.com/chrisgermon/form-ordering-sub000/prometheus"
)

func TestMain(m *testing.M) {
	cfg, _ := config.Load()
	prometheus.InitMetrics(cfg)
	os.Exit(m.Run())
}
