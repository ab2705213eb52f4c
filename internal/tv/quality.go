package tv

import "strings"

// Quality is an ordered quality ladder; a higher value is a better release.
type Quality int

const (
	QualityUnknown Quality = iota
	QualitySDTV
	QualitySDDVD
	QualityHDTV
	QualityHDWebDL
	QualityHDBluRay
	QualityFullHDTV
	QualityFullHDWebDL
	QualityFullHDBluRay
	QualityUHD
)

var qualityNames = map[Quality]string{
	QualityUnknown:      "Unknown",
	QualitySDTV:         "SD TV",
	QualitySDDVD:        "SD DVD",
	QualityHDTV:         "720p HDTV",
	QualityHDWebDL:      "720p WEB-DL",
	QualityHDBluRay:     "720p BluRay",
	QualityFullHDTV:     "1080p HDTV",
	QualityFullHDWebDL:  "1080p WEB-DL",
	QualityFullHDBluRay: "1080p BluRay",
	QualityUHD:          "2160p",
}

var qualityKeys = map[string]Quality{
	"sdtv":         QualitySDTV,
	"sddvd":        QualitySDDVD,
	"hdtv":         QualityHDTV,
	"hdwebdl":      QualityHDWebDL,
	"hdbluray":     QualityHDBluRay,
	"fullhdtv":     QualityFullHDTV,
	"fullhdwebdl":  QualityFullHDWebDL,
	"fullhdbluray": QualityFullHDBluRay,
	"uhd":          QualityUHD,
	"any":          QualityUnknown,
}

func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return qualityNames[QualityUnknown]
}

// ParseQuality accepts the short config keys (sdtv, hdtv, fullhdwebdl, ...).
func ParseQuality(s string) (Quality, bool) {
	q, ok := qualityKeys[strings.ToLower(strings.TrimSpace(s))]
	return q, ok
}
