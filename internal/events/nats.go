package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher 通过 NATS 发布事件，主题为 <prefix>.<type>
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// Connect 连接 NATS
func Connect(url, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("⚠️ NATS 连接断开: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("🔌 NATS 已重连: %s", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

// NewNATSPublisher 基于已有连接创建发布者
func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = "remedy"
	}
	return &NATSPublisher{nc: nc, prefix: prefix}
}

// Subject 事件对应的主题
func (p *NATSPublisher) Subject(typ string) string {
	return p.prefix + "." + typ
}

func (p *NATSPublisher) Publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Printf("事件序列化失败 %s: %v", e.Type, err)
		return
	}
	if err := p.nc.Publish(p.Subject(e.Type), data); err != nil {
		log.Printf("事件发布失败 %s: %v", e.Type, err)
	}
}

// Close 刷新缓冲并关闭连接
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}
