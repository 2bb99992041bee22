package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-reconciler/pkg/logger"
)

func TestNew_JSONEnProduccion(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Service: "stock-reconciler", Out: &buf})

	log.Named("reconcile").ForOrder(1001).Warn().Str("order", "1001").Msg("producto sin enlace")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "reconcile", line["component"])
	assert.Equal(t, "stock-reconciler", line["service"])
	assert.EqualValues(t, 1001, line["order_id"])
	assert.Equal(t, "1001", line["order"])
	assert.Equal(t, "producto sin enlace", line["message"])
}

func TestNew_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "error", Out: &buf})

	log.Info().Msg("descartado")
	assert.Zero(t, buf.Len(), "info no debe escribirse con nivel error")
}

func TestNew_NivelDesconocidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "VERBOSE", Out: &buf})

	log.Debug().Msg("descartado")
	assert.Zero(t, buf.Len())
	log.Info().Msg("escrito")
	assert.NotZero(t, buf.Len())
}

func TestNop_NoEscribe(t *testing.T) {
	assert.NotPanics(t, func() {
		logger.Nop().Error().Msg("nada")
	})
}
