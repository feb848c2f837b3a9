package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManifest_BaseInputName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "basepkgs", (&Manifest{}).BaseInputName())
	require.Equal(t, "nixpkgs", (&Manifest{BaseInput: "nixpkgs"}).BaseInputName())
}
