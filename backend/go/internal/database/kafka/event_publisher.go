package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"moihub_chatbot/backend/go/internal/config"
	"moihub_chatbot/backend/go/internal/models"

	"github.com/segmentio/kafka-go"
)

// messageWriter 是 kafka.Writer 中被使用的部分。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher 封装了向 Kafka 发送知识事件的逻辑。
type EventPublisher struct {
	writer messageWriter
}

// NewEventPublisher 创建一个新的 EventPublisher 实例。
func NewEventPublisher(cfg *config.KafkaConfig) *EventPublisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	})
	return &EventPublisher{writer: writer}
}

// Publish 将事件序列化为 JSON 并发送到 Kafka，以问题原文作为消息键，
// 保证同一问题的事件落在同一分区。
func (p *EventPublisher) Publish(ctx context.Context, event *models.KnowledgeEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal knowledge event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Question),
		Value: jsonData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close 关闭底层的 writer 连接。
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

// EnsureTopic 连接第一个 broker，主题不存在时创建它。
func EnsureTopic(cfg *config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("未配置 Kafka brokers")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("kafka 初始化连接失败: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("无法读取 Kafka 分区信息: %w", err)
	}
	for _, p := range partitions {
		if p.Topic == cfg.Topic {
			return nil
		}
	}

	log.Printf("主题 '%s' 不存在，准备创建...", cfg.Topic)
	if err := conn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.Topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}); err != nil {
		return fmt.Errorf("自动创建 Kafka 主题失败: %w", err)
	}
	return nil
}
