package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	partitionLabel = "partition"
	classLabel     = "class"
)

var (
	partitionCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "partition_count",
		Help: "The number of registered partitions.",
	})

	partitionLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partition_loads_total",
		Help: "The number of partition load requests.",
	}, []string{partitionLabel})

	actorSpawnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actor_spawns_total",
		Help: "The total number of spawned actors.",
	}, []string{partitionLabel, classLabel})

	actorDespawnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actor_despawns_total",
		Help: "The total number of despawned actors.",
	}, []string{partitionLabel})
)

func instrumentPartitionCount(n int) {
	partitionCount.Set(float64(n))
}

func instrumentPartitionLoad(partition string) {
	partitionLoads.
		With(prometheus.Labels{partitionLabel: partition}).
		Inc()
}

func instrumentActorSpawn(partition, class string) {
	actorSpawnsTotal.
		With(prometheus.Labels{
			partitionLabel: partition,
			classLabel:     class,
		}).
		Inc()
}

func instrumentActorDespawn(partition string) {
	actorDespawnsTotal.
		With(prometheus.Labels{partitionLabel: partition}).
		Inc()
}
