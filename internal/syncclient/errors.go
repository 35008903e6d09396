package syncclient

import "fmt"

// NetworkFailure 表示请求没有发出去，或者服务端返回了非 2xx 的状态码
type NetworkFailure struct {
	Op      string
	Status  int // 请求没有得到响应时为 0
	Message string
	Err     error
}

func (e *NetworkFailure) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *NetworkFailure) Unwrap() error {
	return e.Err
}

// ServerRejection 表示自动排班服务拒绝了请求，Message 需要原样展示给用户
type ServerRejection struct {
	Status  int
	Message string
}

func (e *ServerRejection) Error() string {
	return e.Message
}
