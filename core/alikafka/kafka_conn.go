package alikafka

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"

	"github.com/thescopedao/solana_arb_bot/config"
	"github.com/thescopedao/solana_arb_bot/core/model"
	"github.com/thescopedao/solana_arb_bot/utils/logger"
)

// one cluster one producer
var kafkaClient *kafka.Producer
var once sync.Once

// Enabled reports whether a kafka host is configured; publishing is a
// no-op without one.
func Enabled() bool {
	return config.GetKafkaConfig().Host != ""
}

func InitKafka() error {
	kafkaClient = GetKafkaInst()
	return nil
}

func GetKafkaInst() *kafka.Producer {
	once.Do(func() {
		cfg := config.GetKafkaConfig()

		var kafkaconf = &kafka.ConfigMap{
			"api.version.request": "true",
			"message.max.bytes":   1000000,
			"linger.ms":           10,
			"retries":             30,
			"retry.backoff.ms":    1000,
			"acks":                "1"}
		kafkaconf.SetKey("bootstrap.servers", cfg.Host)

		switch cfg.Protocol {
		case "plaintext":
			kafkaconf.SetKey("security.protocol", "plaintext")
		case "sasl_ssl":
			kafkaconf.SetKey("security.protocol", "sasl_ssl")
			kafkaconf.SetKey("sasl.username", cfg.Username)
			kafkaconf.SetKey("sasl.password", cfg.Password)
			kafkaconf.SetKey("sasl.mechanism", "PLAIN")
			kafkaconf.SetKey("enable.ssl.certificate.verification", "false")
			kafkaconf.SetKey("ssl.endpoint.identification.algorithm", "None")
			kafkaconf.SetKey("ssl.ca.location", cfg.CAPath)
		case "sasl_plaintext":
			kafkaconf.SetKey("sasl.mechanism", "PLAIN")
			kafkaconf.SetKey("security.protocol", "sasl_plaintext")
			kafkaconf.SetKey("sasl.username", cfg.Username)
			kafkaconf.SetKey("sasl.password", cfg.Password)
		default:
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": "unknown protocol" + cfg.Protocol}).Error("unknown kafka protocol")
			os.Exit(1)
		}

		client, err := kafka.NewProducer(kafkaconf)
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("connect kafka failed")
			os.Exit(1)
		}

		go func(p *kafka.Producer) {
			for e := range p.Events() {
				switch ev := e.(type) {
				case *kafka.Message:
					if ev.TopicPartition.Error != nil {
						logger.Logrus.WithFields(logrus.Fields{"Data": ev.TopicPartition}).Error("Delivery message failed")
					}
				}
			}
		}(client)

		kafkaClient = client
	})
	return kafkaClient
}

// PublishBundleEvent emits one event per submitted bundle. Delivery is
// fire and forget; a broker outage must never stall the cycle loop.
func PublishBundleEvent(event model.BundleEvent) error {
	cfg := config.GetKafkaConfig()
	topic := cfg.Topic

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	bydata, err := json.Marshal(&event)
	if err != nil {
		return err
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.BundleID),
		Value:          bydata,
	}

	return GetKafkaInst().Produce(msg, nil)
}
