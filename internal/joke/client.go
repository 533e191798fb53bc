package joke

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultURL 是默认的笑话API地址，一个无需鉴权的GET接口。
const DefaultURL = "https://icanhazdadjoke.com/"

// Fallback 是API失败或超时时展示给用户的兜底文案。
// 外部API的故障绝不能以原始错误的形式传到用户面前。
const Fallback = "Ошибка получения шутки. Попробуй ещё раз!"

// Client 是笑话API的HTTP客户端，所有请求都有有界超时。
type Client struct {
	http *http.Client
	url  string
}

// NewClient 构造客户端。timeout 限制整个请求的时长，到期后返回兜底文案。
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		url:  url,
	}
}

type jokeResponse struct {
	Joke string `json:"joke"`
}

// Fetch 拉取一条笑话。任何失败（网络、超时、非200、解析）都降级为兜底文案，
// 永远返回可直接展示的文本，不把错误抛给调用方的用户流程。
func (c *Client) Fetch(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		fmt.Printf("笑话API: 构造请求失败: %v\n", err)
		return Fallback
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "coffee1-bot (https://github.com/mrp23231/coffee1-bot)")

	resp, err := c.http.Do(req)
	if err != nil {
		fmt.Printf("笑话API: 请求失败: %v\n", err)
		return Fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("笑话API: 非预期状态码 %d\n", resp.StatusCode)
		return Fallback
	}

	var jr jokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil || jr.Joke == "" {
		fmt.Printf("笑话API: 解析响应失败: %v\n", err)
		return Fallback
	}
	return jr.Joke
}
