package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
)

type NATSConfig struct {
	URL           string
	Token         string
	SubjectPrefix string
	ClientName    string
}

type natsConn interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

// NATSPublisher emits completion events on <prefix>.competition.completed.
// The Nats-Msg-Id header lets a JetStream stream drop redelivered events.
type NATSPublisher struct {
	conn    natsConn
	closer  func()
	subject string
	logger  *logging.Logger
}

var _ usecase.EventPublisher = (*NATSPublisher)(nil)

func ConnectNATS(cfg NATSConfig, logger *logging.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("nats")

	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = nats.DefaultURL
	}
	name := strings.TrimSpace(cfg.ClientName)
	if name == "" {
		name = "fantasy-contest"
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrlRedacted())
		}),
	}
	if token := strings.TrimSpace(cfg.Token); token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	logger.Info("connected to nats", "url", nc.ConnectedUrlRedacted())

	publisher := newNATSPublisher(nc, cfg.SubjectPrefix, logger)
	publisher.closer = nc.Close
	return publisher, nil
}

func newNATSPublisher(conn natsConn, subjectPrefix string, logger *logging.Logger) *NATSPublisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	subject := SubjectCompetitionCompleted
	if prefix := strings.Trim(strings.TrimSpace(subjectPrefix), "."); prefix != "" {
		subject = prefix + "." + subject
	}
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}
}

func (p *NATSPublisher) Name() string {
	return "nats"
}

func (p *NATSPublisher) Subject() string {
	return p.subject
}

func (p *NATSPublisher) PublishCompetitionCompleted(ctx context.Context, event notification.CompetitionCompleted) error {
	data, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode completion event: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, eventID(event))
	if err := p.conn.PublishMsg(msg); err != nil {
		return usecase.MarkTransient(fmt.Errorf("publish %s: %w", p.subject, err))
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return usecase.MarkTransient(fmt.Errorf("flush %s: %w", p.subject, err))
	}

	p.logger.DebugContext(ctx, "completion event published", "subject", p.subject, "user_id", event.UserID, "competition_id", event.CompetitionID)
	return nil
}

func (p *NATSPublisher) Close() {
	if p.closer != nil {
		p.closer()
	}
}
