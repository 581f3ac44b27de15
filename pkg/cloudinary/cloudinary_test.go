package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildOptimizedImageURL(t *testing.T) {
	url := BuildOptimizedImageURL("demo", "carparks/carpark_7", 600)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/q_auto,f_auto,w_600,c_fill/carparks/carpark_7", url)
}

func TestBuildOptimizedImageURLDefaultsToThumbWidth(t *testing.T) {
	url := BuildOptimizedImageURL("demo", "carparks/carpark_7", 0)
	assert.Contains(t, url, "w_300")
}
