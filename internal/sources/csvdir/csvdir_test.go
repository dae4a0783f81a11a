package csvdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadeworks/fabricsync/pkg/catalog"
	"github.com/shadeworks/fabricsync/pkg/errors"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, SupplyFile,
		"category,field1,field2,field3,external_ref,price,width\n"+
			"Roller Fabrics,Sanctuary,Blockout,Pearl,SAN-BO-PRL,14.50,\n"+
			`Roller Fabrics,"=Vibe",Screen,"""Dune""",VIB-SC-DUN,$16.00,`+"\n"+
			"Vertical Fabrics,Carnival,Blockout,Ecru,CARN-EC,10.00,500\n")
	writeFixture(t, dir, TargetsFile,
		"group,identifier,external_ref,field1,field2,field3,active,status_note,price_grid,cost_grid,discount,row_ref\n"+
			"ROLL,ROLL10000,SAN-BO-PRL,Sanctuary,Blockout,Pearl,TRUE,,RBPG,RBCG,RB,2\n"+
			"VERT,VERT10000,CARN-EC,Carnival,Blockout,Ecru,FALSE,,,,VB,3\n")
	writeFixture(t, dir, PricingFile,
		"identifier,date_effective,cost,sell\n"+
			"ROLL10000,2024-01-01,14.50,29.00\n"+
			"ROLL10000,2024-06-01,15.00,30.00\n"+
			"OTHER9999,2024-01-01,1.00,2.00\n")
	return dir
}

func TestFetch(t *testing.T) {
	src := New(fixtureDir(t))

	variants, err := src.Fetch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, variants, 3)

	assert.Equal(t, "Sanctuary", variants[0].Field1)
	assert.Nil(t, variants[0].Width)

	// Formula escapes and quotes are scrubbed at the boundary.
	assert.Equal(t, "Vibe", variants[1].Field1)
	assert.Equal(t, "Dune", variants[1].Field3)
	assert.Equal(t, "$16.00", variants[1].RawPrice)

	require.NotNil(t, variants[2].Width)
	assert.Equal(t, "500", variants[2].Width.String())
}

func TestFetch_CategoryFilter(t *testing.T) {
	src := New(fixtureDir(t))

	variants, err := src.Fetch(context.Background(), []string{"vertical fabrics"})
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "Carnival", variants[0].Field1)
}

func TestLoad(t *testing.T) {
	src := New(fixtureDir(t))

	records, prices, err := src.Load(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, catalog.GroupID("ROLL"), records[0].GroupID)
	assert.True(t, records[0].Active)
	assert.False(t, records[1].Active)

	// Pricing scoped to loaded identifiers; the orphan row is dropped.
	require.Len(t, prices, 2)
	for _, p := range prices {
		assert.Equal(t, "ROLL10000", p.Identifier)
	}
}

func TestLoad_GroupFilter(t *testing.T) {
	src := New(fixtureDir(t))

	records, prices, err := src.Load(context.Background(), []catalog.GroupID{"VERT"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "VERT10000", records[0].Identifier)
	assert.Empty(t, prices)
}

func TestLoad_MissingPricingIsOptional(t *testing.T) {
	dir := fixtureDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, PricingFile)))

	src := New(dir)
	records, prices, err := src.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Nil(t, prices)
}

func TestFetch_MissingSupplyFails(t *testing.T) {
	src := New(t.TempDir())
	_, err := src.Fetch(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err), "missing supply export is reported as not found")
}

func TestFetch_BadWidth(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, SupplyFile,
		"category,field1,field2,field3,external_ref,price,width\n"+
			"Vertical Fabrics,Carnival,Blockout,Ecru,CARN-EC,10.00,wide\n")

	_, err := New(dir).Fetch(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid width")
}
