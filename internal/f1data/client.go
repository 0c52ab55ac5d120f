package f1data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/pitwall-hub/pitwall/internal/cache"
	"github.com/pitwall-hub/pitwall/internal/version"
)

// pageLimit 覆盖 API 默认的 30 条分页，保证一次取回整季赛历与完整成绩表。
const pageLimit = "100"

// Options 描述 Client 的构造参数。
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Responses  cache.ResponseCache
	Logger     logrus.FieldLogger
}

// Client 通过 Ergast 兼容接口获取赛历、成绩与积分榜。
type Client struct {
	baseURL   string
	http      *http.Client
	responses cache.ResponseCache
	logger    logrus.FieldLogger
}

type refreshKey struct{}

// WithRefresh 标记本次请求必须回源：跳过响应缓存读取，但仍回写最新响应。
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

func refreshRequested(ctx context.Context) bool {
	refresh, _ := ctx.Value(refreshKey{}).(bool)
	return refresh
}

// NewClient 构造数据客户端。
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("f1data: base url required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		baseURL:   base,
		http:      httpClient,
		responses: opts.Responses,
		logger:    logger,
	}, nil
}

// Schedule 返回某赛季的完整赛历。
func (c *Client) Schedule(ctx context.Context, year int) ([]Event, error) {
	const op = "schedule"
	path := fmt.Sprintf("%d.json", year)
	body, err := c.fetch(ctx, op, path)
	if err != nil {
		return nil, err
	}
	races := gjson.GetBytes(body, "MRData.RaceTable.Races").Array()
	if len(races) == 0 {
		return nil, c.notAvailable(op, path)
	}
	events := make([]Event, 0, len(races))
	for _, race := range races {
		events = append(events, parseEvent(race))
	}
	return events, nil
}

// SessionResults 返回某一站某个 session 的成绩。
func (c *Client) SessionResults(ctx context.Context, year, round int, session SessionType) (Session, error) {
	const op = "session_results"
	endpoint, field, ok := session.resource()
	if !ok {
		return Session{}, fmt.Errorf("%w: unsupported session type %q", ErrF1Data, session)
	}
	path := fmt.Sprintf("%d/%d/%s.json", year, round, endpoint)
	body, err := c.fetch(ctx, op, path)
	if err != nil {
		return Session{}, err
	}
	race := gjson.GetBytes(body, "MRData.RaceTable.Races.0")
	rows := race.Get(field).Array()
	if !race.Exists() || len(rows) == 0 {
		return Session{}, c.notAvailable(op, path)
	}
	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, parseResult(row))
	}
	return Session{
		Event:   parseEvent(race),
		Type:    session,
		Results: results,
	}, nil
}

// DriverStandings 返回某赛季最新的车手积分榜。
func (c *Client) DriverStandings(ctx context.Context, year int) (DriverTable, error) {
	const op = "driver_standings"
	path := fmt.Sprintf("%d/driverStandings.json", year)
	body, err := c.fetch(ctx, op, path)
	if err != nil {
		return DriverTable{}, err
	}
	list := gjson.GetBytes(body, "MRData.StandingsTable.StandingsLists.0")
	rows := list.Get("DriverStandings").Array()
	if !list.Exists() || len(rows) == 0 {
		return DriverTable{}, c.notAvailable(op, path)
	}
	table := DriverTable{
		Season:  int(list.Get("season").Int()),
		Round:   int(list.Get("round").Int()),
		Entries: make([]DriverStanding, 0, len(rows)),
	}
	for _, row := range rows {
		table.Entries = append(table.Entries, parseDriverStanding(row))
	}
	return table, nil
}

// ConstructorStandings 返回某赛季最新的车队积分榜。
func (c *Client) ConstructorStandings(ctx context.Context, year int) (ConstructorTable, error) {
	const op = "constructor_standings"
	path := fmt.Sprintf("%d/constructorStandings.json", year)
	body, err := c.fetch(ctx, op, path)
	if err != nil {
		return ConstructorTable{}, err
	}
	list := gjson.GetBytes(body, "MRData.StandingsTable.StandingsLists.0")
	rows := list.Get("ConstructorStandings").Array()
	if !list.Exists() || len(rows) == 0 {
		return ConstructorTable{}, c.notAvailable(op, path)
	}
	table := ConstructorTable{
		Season:  int(list.Get("season").Int()),
		Round:   int(list.Get("round").Int()),
		Entries: make([]ConstructorStanding, 0, len(rows)),
	}
	for _, row := range rows {
		table.Entries = append(table.Entries, ConstructorStanding{
			Position: int(row.Get("position").Int()),
			Points:   row.Get("points").Float(),
			Wins:     int(row.Get("wins").Int()),
			Team:     row.Get("Constructor.name").String(),
		})
	}
	return table, nil
}

// fetch 优先命中响应缓存，未命中或要求回源时请求上游并回写缓存。
func (c *Client) fetch(ctx context.Context, op, path string) ([]byte, error) {
	logger := c.logger.WithFields(logrus.Fields{"action": op, "path": path})

	if c.responses.Enabled() && !refreshRequested(ctx) {
		if body, err := c.responses.Lookup(ctx, path); err == nil {
			if gjson.ValidBytes(body) {
				logger.Debug("upstream response served from cache")
				return body, nil
			}
			logger.Warn("cached upstream response corrupt, discarding")
			if err := c.responses.Forget(ctx, path); err != nil {
				logger.WithError(err).Warn("corrupt cached response not removed")
			}
		}
	}

	url := c.baseURL + "/" + path + "?limit=" + pageLimit
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Op: op, URL: url, Kind: ErrF1Data, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: op, URL: url, Kind: classifyTransport(ctx, err), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &FetchError{Op: op, URL: url, Status: resp.StatusCode, Kind: ErrDataNotAvailable}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Op: op, URL: url, Status: resp.StatusCode, Kind: ErrF1Data}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Op: op, URL: url, Status: resp.StatusCode, Kind: classifyTransport(ctx, err), Cause: err}
	}
	if !gjson.ValidBytes(body) {
		return nil, &FetchError{Op: op, URL: url, Status: resp.StatusCode, Kind: ErrF1Data, Cause: errors.New("invalid json body")}
	}

	if c.responses.Enabled() {
		if err := c.responses.Remember(ctx, path, body); err != nil {
			logger.WithError(err).Warn("upstream response not cached")
		}
	}
	logger.WithField("bytes", len(body)).Debug("upstream response fetched")
	return body, nil
}

func (c *Client) notAvailable(op, path string) error {
	return &FetchError{Op: op, URL: c.baseURL + "/" + path, Kind: ErrDataNotAvailable}
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrAPITimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrAPITimeout
	}
	return ErrF1Data
}
