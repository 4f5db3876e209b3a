package env

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type EnvTestSuite struct {
	suite.Suite
}

func (s *EnvTestSuite) TearDownTest() {
	os.Unsetenv("STRONTIUM_PORT")
	os.Unsetenv("STRONTIUM_LOGLEVEL")
	os.Unsetenv("STRONTIUM_CLAIMGRACEPERIOD")
}

func (s *EnvTestSuite) TestProcess() {
	assert.Nil(s.T(), Process())
	assert.NotNil(s.T(), Variables())
	assert.Equal(s.T(), "info", Variables().LogLevel)
	assert.Equal(s.T(), 4, Variables().MaxConcurrentExecutions)
	assert.Equal(s.T(), 10*time.Minute, Variables().ExecutionTimeout)
}

func (s *EnvTestSuite) TestProcessInvalidTypeFailure() {
	os.Setenv("STRONTIUM_PORT", "not_a_port")
	assert.NotNil(s.T(), Process())
}

func (s *EnvTestSuite) TestProcessInvalidLogLevelFailure() {
	os.Setenv("STRONTIUM_LOGLEVEL", "bogus")
	assert.NotNil(s.T(), Process())
}

func (s *EnvTestSuite) TestClaimGraceDefaultsToTwiceTimeout() {
	assert.Nil(s.T(), Process())
	assert.Equal(s.T(), 20*time.Minute, Variables().ClaimGrace())

	os.Setenv("STRONTIUM_CLAIMGRACEPERIOD", "90s")
	assert.Nil(s.T(), Process())
	assert.Equal(s.T(), 90*time.Second, Variables().ClaimGrace())
}

func TestEnvTestSuite(t *testing.T) {
	suite.Run(t, new(EnvTestSuite))
}
