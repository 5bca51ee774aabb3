package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ARADHYA200/glow-shop-keeper/internal/messaging/kafka"
)

// initKafkaProducer подключается к Kafka, если brokers не пустой.
// Ошибка подключения не фатальна: витрина продолжает работать без Kafka,
// события остаются в outbox.
func initKafkaProducer(brokers string, logger *log.Entry) *kafka.Producer {
	if brokers == "" {
		return nil
	}

	brokerList := strings.Split(brokers, ",")
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer
}

// closeKafka закрывает producer, если он был создан.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
