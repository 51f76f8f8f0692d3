package mysqlconn

import "go.uber.org/zap"

// traceSend and traceRecv mirror the teacher's "[seq ->] ..." /
// "[<- seq] ..." Debug-gated log.Printf call sites, as structured zap
// fields instead of formatted strings.
func traceSend(logger *zap.Logger, seq byte, opcode string) {
	logger.Debug("send", zap.Uint8("seq", seq), zap.String("op", opcode))
}

func traceRecv(logger *zap.Logger, seq byte, kind string) {
	logger.Debug("recv", zap.Uint8("seq", seq), zap.String("kind", kind))
}
