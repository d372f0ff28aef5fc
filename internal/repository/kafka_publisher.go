package repository

import (
	"context"

	"StructScan/internal/domain/models"
	pkgkafka "StructScan/pkg/kafka"
	applogger "StructScan/pkg/logger"
	"StructScan/pkg/util"
)

// KafkaScanPublisher emits whole-market scans to a Kafka topic. Messages are
// keyed by scan date so replays of the same day land on the same partition.
type KafkaScanPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaScanPublisher(producer *pkgkafka.Producer, topic string) *KafkaScanPublisher {
	if topic == "" {
		topic = "structscan.scans"
	}
	return &KafkaScanPublisher{producer: producer, topic: topic}
}

// SetLogger injects a structured logger.
func (p *KafkaScanPublisher) SetLogger(l *applogger.Logger) { p.l = l }

func (p *KafkaScanPublisher) PublishScan(ctx context.Context, resp *models.ScanResponse) error {
	key := []byte(util.DayKey(resp.ScanDate))
	err := p.producer.Publish(ctx, p.topic, key, resp)
	if p.l != nil {
		if err != nil {
			p.l.Error("scan publish failed",
				applogger.String("topic", p.topic),
				applogger.String("scan_date", string(key)),
				applogger.Error(err),
			)
		} else {
			p.l.Info("scan published",
				applogger.String("topic", p.topic),
				applogger.String("scan_date", string(key)),
				applogger.Int("symbols", len(resp.Symbols)),
			)
		}
	}
	return err
}

func (p *KafkaScanPublisher) Close() error {
	return p.producer.Close()
}
