package gallery

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/collection"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

// TerminalNotifier prints ledger failures as error lines and logs them.
type TerminalNotifier struct {
	mutex  sync.Mutex
	writer io.Writer
	logger *zap.Logger
}

var _ collection.Notifier = (*TerminalNotifier)(nil)

func NewTerminalNotifier(writer io.Writer, logger *zap.Logger) *TerminalNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TerminalNotifier{writer: writer, logger: logger}
}

func (n *TerminalNotifier) Notify(_ context.Context, owner common.Address, err error) {
	n.logger.Warn("ledger call failed", zap.String("owner", owner.Hex()), zap.Error(err))

	n.mutex.Lock()
	defer n.mutex.Unlock()
	_, _ = fmt.Fprintln(n.writer, pterm.Error.Sprintf("%v", err))
}
