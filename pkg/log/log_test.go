package log

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	assert.Nil(t, SetLevel("debug"))
	assert.Equal(t, DEBUG, logLevel)
	assert.Nil(t, SetLevel("INFO"))
	assert.Equal(t, INFO, logLevel)
	assert.Nil(t, SetLevel("Warning"))
	assert.Equal(t, WARNING, logLevel)
	assert.Nil(t, SetLevel("error"))
	assert.Equal(t, ERROR, logLevel)
	assert.Nil(t, SetLevel("fatal"))
	assert.Equal(t, FATAL, logLevel)
	assert.NotNil(t, SetLevel("bogus"))
}

func TestLevelFiltering(t *testing.T) {
	assert.Nil(t, SetLevel("warning"))
	defer func() { assert.Nil(t, SetLevel("debug")) }()

	assert.Empty(t, capture(Debug, "debug msg", "key", "value"))
	assert.Empty(t, capture(Info, "info msg", "key", "value"))
	assert.NotEmpty(t, capture(Warn, "warn msg", "key", "value"))
	assert.NotEmpty(t, capture(Error, "error msg", "key", "value"))
}

func capture(logFunc func(string, ...interface{}), msg string, kv ...interface{}) string {
	var buffer bytes.Buffer

	old := zap.L()
	writer := bufio.NewWriter(&buffer)

	encoderCfg := zap.NewProductionEncoderConfig()
	zap.ReplaceGlobals(zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(writer),
		zapcore.DebugLevel,
	)))
	defer zap.ReplaceGlobals(old)

	logFunc(msg, kv...)
	writer.Flush()

	return buffer.String()
}
