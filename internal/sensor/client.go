package sensor

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/2beens/fitstats/internal/detector"

	log "github.com/sirupsen/logrus"
)

// Client reads distance samples from the ultrasonic sensor bridge over TCP.
// Protocol: send "R\n", receive one line with the measured distance in
// centimeters, or "timeout" when the echo never came back.
type Client struct {
	addr        string
	maxRangeCm  float64
	dialTimeout time.Duration
	readTimeout time.Duration

	mutex sync.Mutex
	conn  net.Conn
}

type NewClientParams struct {
	Addr        string
	MaxRangeCm  float64
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

func NewClient(params NewClientParams) *Client {
	return &Client{
		addr:        params.Addr,
		maxRangeCm:  params.MaxRangeCm,
		dialTimeout: params.DialTimeout,
		readTimeout: params.ReadTimeout,
	}
}

func (c *Client) connect() error {
	if c.conn != nil {
		return nil
	}

	conn, err := net.DialTimeout("tcp", c.addr, c.dialTimeout)
	if err != nil {
		return fmt.Errorf("dial sensor bridge at %s: %w", c.addr, err)
	}

	log.Debugf("connected to sensor bridge at %s", c.addr)
	c.conn = conn
	return nil
}

func (c *Client) dropConn() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// Sample polls the bridge once. Echo timeouts, readings beyond the plausible
// range and connection problems all normalize to the same invalid sample:
// for the detector they mean "nothing in front of the sensor".
func (c *Client) Sample(_ context.Context) detector.Sample {
	reading, err := c.poll()
	if err != nil {
		log.Tracef("sensor poll: %s", err)
		return detector.InvalidSample()
	}
	if reading > c.maxRangeCm {
		return detector.InvalidSample()
	}
	return detector.ValidSample(reading)
}

func (c *Client) poll() (float64, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.connect(); err != nil {
		return 0, err
	}

	if err := c.conn.SetDeadline(time.Now().Add(c.readTimeout)); err != nil {
		c.dropConn()
		return 0, fmt.Errorf("set deadline: %w", err)
	}

	if _, err := c.conn.Write([]byte("R\n")); err != nil {
		c.dropConn()
		return 0, fmt.Errorf("send poll command: %w", err)
	}

	line, err := bufio.NewReader(c.conn).ReadString('\n')
	if err != nil {
		c.dropConn()
		return 0, fmt.Errorf("read sensor response: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" || strings.EqualFold(line, "timeout") {
		return 0, fmt.Errorf("sensor echo timeout")
	}

	reading, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, fmt.Errorf("parse sensor response %q: %w", line, err)
	}
	return reading, nil
}

// Close drops the bridge connection.
func (c *Client) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.dropConn()
}
