package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/pawonsalam/restosuite/internal/logger"
	"github.com/pawonsalam/restosuite/internal/models"
)

type SaramaProducer struct {
	producer sarama.SyncProducer
}

func newSaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second
	return saramaConfig
}

func NewSaramaProducer(cfg models.KafkaConfig) (*SaramaProducer, error) {
	brokerList := strings.Split(cfg.BrokerList, ",")

	producer, err := sarama.NewSyncProducer(brokerList, newSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	logger.GetLogger().Infow("sarama producer created", "brokers", brokerList)
	return &SaramaProducer{producer: producer}, nil
}

// NewSaramaProducerFrom wraps an existing producer, e.g. a sarama mock.
func NewSaramaProducerFrom(producer sarama.SyncProducer) *SaramaProducer {
	return &SaramaProducer{producer: producer}
}

func (s *SaramaProducer) WriteMessage(topic string, msg []byte) error {
	if s.producer == nil {
		return fmt.Errorf("sarama producer is not initialized")
	}

	_, _, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		logger.GetLogger().Warnw("failed to send message", "topic", topic, "error", err)
		return err
	}

	return nil
}

func (s *SaramaProducer) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
