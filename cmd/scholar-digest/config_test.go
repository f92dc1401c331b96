package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

func TestDefaultsDecode(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var c types.Config
	require.NoError(t, v.Unmarshal(&c))
	assert.Equal(t, types.DefaultConfig(), c)
}

func TestValidateConfig(t *testing.T) {
	c := types.DefaultConfig()
	assert.NoError(t, validateConfig(c))

	bad := c
	bad.Search.MinYear, bad.Search.MaxYear = 2020, 2010
	assert.Error(t, validateConfig(bad))

	bad = c
	bad.Summary.Provider = "llama"
	assert.Error(t, validateConfig(bad))

	bad = c
	bad.Export.Format = "pdf"
	assert.Error(t, validateConfig(bad))
}

func TestSearchFlags(t *testing.T) {
	cmd := &cobra.Command{}
	addSearchFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--max-pages", "2", "--min-year", "2015", "--year", "2018"}))

	sc := types.DefaultConfig().Search
	applySearchFlags(cmd, &sc)
	assert.Equal(t, 2, sc.MaxPages)
	assert.Equal(t, 2015, sc.MinYear)
	assert.Equal(t, 2026, sc.MaxYear)
	assert.Equal(t, 200, sc.PageSize)

	year, err := yearFlag(cmd)
	require.NoError(t, err)
	assert.Equal(t, 2018, year)
}

func TestNoYearRange(t *testing.T) {
	cmd := &cobra.Command{}
	addSearchFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--no-year-range", "--year", "all"}))

	sc := types.DefaultConfig().Search
	applySearchFlags(cmd, &sc)
	assert.False(t, sc.YearFiltered())

	year, err := yearFlag(cmd)
	require.NoError(t, err)
	assert.Zero(t, year)
}

func TestYearFlagInvalid(t *testing.T) {
	cmd := &cobra.Command{}
	addSearchFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--year", "soon"}))
	_, err := yearFlag(cmd)
	assert.Error(t, err)
}
