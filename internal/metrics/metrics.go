// Package metrics регистрирует прометеевские метрики движка.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GateDecisions счётчик решений гейта доступа по способности и исходу.
var GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "coachhub_gate_decisions_total",
	Help: "Access gate decisions by capability and outcome.",
}, []string{"capability", "decision"})

// DashboardBuilds счётчик сборок дашборда тренера.
var DashboardBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "coachhub_dashboard_builds_total",
	Help: "Trainer dashboard snapshot builds by result.",
}, []string{"result"})
