package images

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-git/go-billy/v5"
)

// Dimensions decodes only the header of the image at path.
func Dimensions(fsys billy.Filesystem, path string) (int, int, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	img, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}

	return img.Width, img.Height, nil
}
