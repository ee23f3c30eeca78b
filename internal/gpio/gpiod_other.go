//go:build !linux

package gpio

func openGpiod(string) (Backend, error) {
	return nil, ErrUnsupported
}
