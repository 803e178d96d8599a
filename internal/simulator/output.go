package simulator

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/lucsky/cuid"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/swoopdelivery/swoopsim/internal/cloudwriter"
	"github.com/swoopdelivery/swoopsim/internal/models"
	"github.com/swoopdelivery/swoopsim/internal/output"
)

// Topics the engine publishes to. Every destination keys its files,
// tables or Kafka topics off these names.
const (
	TopicOrderEvents       = "order_events"
	TopicAssignmentEvents  = "assignment_events"
	TopicDeliveryEvents    = "delivery_events"
	TopicAssetStatusEvents = "asset_status_events"
	TopicStatusLogEvents   = "status_log_events"
)

// topicSchema returns a fresh instance of the payload struct for a topic,
// used both as the parquet schema and as the unmarshal target.
func topicSchema(topic string) (interface{}, error) {
	switch topic {
	case TopicOrderEvents:
		return new(OrderPlacedEvent), nil
	case TopicAssignmentEvents:
		return new(OrderAssignedEvent), nil
	case TopicDeliveryEvents:
		return new(OrderDeliveredEvent), nil
	case TopicAssetStatusEvents:
		return new(AssetStatusEvent), nil
	case TopicStatusLogEvents:
		return new(StatusLogEvent), nil
	}
	return nil, fmt.Errorf("unknown topic: %s", topic)
}

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// ConsoleOutput prints each event to stdout, one line per event.
type ConsoleOutput struct{}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	_, err := fmt.Fprintf(os.Stdout, "[%s] %s\n", topic, string(msg))
	return err
}

func (c *ConsoleOutput) Close() error { return nil }

// JSONOutput writes newline-delimited JSON under
// basePath/folder/topic/year=Y/month=M/day=D/hour=H/data.json.
type JSONOutput struct {
	basePath string
	folder   string
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	partitionPath, err := partitionFor(msg)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(j.basePath, j.folder, topic, partitionPath)
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return err
	}

	fileKey := topic + "_" + partitionPath
	file, ok := j.files[fileKey]
	if !ok {
		file, err = os.Create(filepath.Join(fullPath, "data.json"))
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err = file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	for _, file := range j.files {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

// ParquetOutput writes one parquet file per topic partition, locally or
// into an object store via a cloudwriter factory.
type ParquetOutput struct {
	basePath           string
	folder             string
	writers            map[string]*writer.ParquetWriter
	files              map[string]source.ParquetFile
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
}

func NewParquetOutput(config *models.Config) (*ParquetOutput, error) {
	p := &ParquetOutput{
		basePath: config.OutputPath,
		folder:   config.OutputFolder,
		writers:  make(map[string]*writer.ParquetWriter),
		files:    make(map[string]source.ParquetFile),
	}

	if config.CloudStorage.Provider != "" {
		switch config.CloudStorage.Provider {
		case "s3":
			factory, err := cloudwriter.NewS3WriterFactory(config.CloudStorage.Region)
			if err != nil {
				return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			p.cloudWriterFactory = factory
			p.cloudBucketName = config.CloudStorage.BucketName
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", config.CloudStorage.Provider)
		}
	}
	return p, nil
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	partitionPath, err := partitionFor(msg)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(p.basePath, p.folder, topic, partitionPath)

	writerKey := topic + "_" + partitionPath
	pw, ok := p.writers[writerKey]
	if !ok {
		pw, err = p.createNewWriter(writerKey, fullPath, topic)
		if err != nil {
			return fmt.Errorf("failed to create parquet writer: %w", err)
		}
	}

	event, err := topicSchema(topic)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(msg, event); err != nil {
		return err
	}
	if err := pw.Write(event); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *ParquetOutput) createNewWriter(writerKey, fullPath, topic string) (*writer.ParquetWriter, error) {
	var fw source.ParquetFile
	var err error
	if p.cloudWriterFactory != nil {
		objectPath := filepath.Join(fullPath, "data.parquet")
		cw, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = newCloudParquetFile(cw)
	} else {
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return nil, err
		}
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	sc, err := topicSchema(topic)
	if err != nil {
		return nil, err
	}
	pw, err := writer.NewParquetWriter(fw, sc, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}

	p.writers[writerKey] = pw
	p.files[writerKey] = fw
	return pw, nil
}

func (p *ParquetOutput) Close() error {
	var lastErr error
	for key, pw := range p.writers {
		if err := pw.WriteStop(); err != nil {
			lastErr = err
			log.Printf("error closing parquet writer %s: %v", key, err)
		}
		if f, ok := p.files[key]; ok {
			if err := f.Close(); err != nil {
				lastErr = err
				log.Printf("error closing parquet file %s: %v", key, err)
			}
		}
	}
	return lastErr
}

// cloudParquetFile adapts a CloudWriter to the parquet source interface.
// The writer only ever appends, so reads and end-relative seeks are
// rejected.
type cloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func newCloudParquetFile(cw cloudwriter.CloudWriter) *cloudParquetFile {
	return &cloudParquetFile{cloudWriter: cw}
}

func (c *cloudParquetFile) Open(name string) (source.ParquetFile, error)   { return c, nil }
func (c *cloudParquetFile) Create(name string) (source.ParquetFile, error) { return c, nil }

func (c *cloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		c.offset = offset
	case 1:
		c.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *cloudParquetFile) Read(p []byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *cloudParquetFile) Write(p []byte) (int, error) {
	return c.cloudWriter.Write(p)
}

func (c *cloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}

// KafkaOutput publishes events through a Sarama sync producer.
type KafkaOutput struct {
	producer sarama.SyncProducer
}

func NewKafkaOutput(config *models.Config) (*KafkaOutput, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true

	brokerList := strings.Split(config.KafkaBrokerList, ",")
	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}
	log.Printf("Sarama producer created with brokers %v", brokerList)
	return &KafkaOutput{producer: producer}, nil
}

func (k *KafkaOutput) WriteMessage(topic string, msg []byte) error {
	if k.producer == nil {
		return fmt.Errorf("Kafka producer is closed")
	}
	_, _, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	})
	return err
}

func (k *KafkaOutput) Close() error {
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}

// partitionFor derives the hive-style partition path from an event's
// timestamp field.
func partitionFor(msg []byte) (string, error) {
	var envelope struct {
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		return "", err
	}
	eventTime, err := time.Parse(time.RFC3339, envelope.Timestamp)
	if err != nil {
		return "", fmt.Errorf("invalid timestamp: %w", err)
	}
	year, month, day := eventTime.Date()
	return fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, eventTime.Hour()), nil
}

func (s *Simulator) determineOutputDestination() OutputDestination {
	cfg := s.Config
	if cfg.OutputFolder == "" {
		// each run gets its own folder so reruns never clobber earlier data
		cfg.OutputFolder = "run-" + cuid.Slug()
	}
	if cfg.KafkaEnabled || cfg.OutputDestination == "kafka" {
		out, err := NewKafkaOutput(cfg)
		if err != nil {
			log.Fatalf("Failed to create Kafka output: %v", err)
		}
		return out
	}
	switch cfg.OutputDestination {
	case "parquet":
		out, err := NewParquetOutput(cfg)
		if err != nil {
			log.Fatalf("Failed to create Parquet output: %v", err)
		}
		return out
	case "file", "json":
		return NewJSONOutput(cfg.OutputPath, cfg.OutputFolder)
	case "postgres":
		out, err := output.NewPostgresOutput(cfg)
		if err != nil {
			log.Fatalf("Failed to create Postgres output: %v", err)
		}
		return out
	}
	return &ConsoleOutput{}
}
