package pdfrender

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
)

// Размер страницы A4 в пунктах
const (
	A4Width  = 595.28
	A4Height = 841.89
)

const fontFamily = "Helvetica"

// Renderer : обёртка над gofpdf. Координаты во всём публичном API —
// от нижнего левого угла страницы, как в самом PDF. Перевод во внутреннюю
// систему gofpdf (от верхнего левого угла) делается здесь.
type Renderer struct {
	pdf   *gofpdf.Fpdf
	sizes map[int][2]float64 // страница → (ширина, высота)
}

// NewSinglePage : чистый документ из одной страницы A4 со встроенными шрифтами
func NewSinglePage() *Renderer {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", 11)

	return &Renderer{
		pdf:   pdf,
		sizes: map[int][2]float64{1: {A4Width, A4Height}},
	}
}

// OpenStream : открывает существующий PDF для дорисовки поверх его страниц.
// Каждая страница импортируется как шаблон и кладётся на новую страницу
// того же размера. gofpdi на битых файлах паникует, поэтому recover.
func OpenStream(src []byte) (r *Renderer, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("не удалось разобрать PDF: %v", rec)
		}
	}()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	importer := gofpdi.NewImporter()
	readSeeker := io.ReadSeeker(bytes.NewReader(src))

	templates := map[int]int{
		1: importer.ImportPageFromStream(pdf, &readSeeker, 1, "/MediaBox"),
	}

	pageSizes := importer.GetPageSizes()
	pageCount := len(pageSizes)
	for page := 2; page <= pageCount; page++ {
		templates[page] = importer.ImportPageFromStream(pdf, &readSeeker, page, "/MediaBox")
	}

	sizes := make(map[int][2]float64, pageCount)
	for page := 1; page <= pageCount; page++ {
		width := pageSizes[page]["/MediaBox"]["w"]
		height := pageSizes[page]["/MediaBox"]["h"]

		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})
		importer.UseImportedTemplate(pdf, templates[page], 0, 0, width, height)
		sizes[page] = [2]float64{width, height}
	}

	pdf.SetFont(fontFamily, "", 11)

	if pdf.Err() {
		return nil, pdf.Error()
	}

	return &Renderer{pdf: pdf, sizes: sizes}, nil
}

func (r *Renderer) PageCount() int {
	return len(r.sizes)
}

// PageSize : размеры страницы в пунктах; нулевые, если страницы нет
func (r *Renderer) PageSize(page int) (width, height float64) {
	size, ok := r.sizes[page]
	if ok == false {
		return 0, 0
	}
	return size[0], size[1]
}

// DrawText : текст с базовой линией на высоте y от нижнего края страницы
func (r *Renderer) DrawText(page int, x, y float64, size float64, bold bool, text string) {
	_, pageHeight := r.PageSize(page)
	if pageHeight == 0 {
		return
	}

	style := ""
	if bold {
		style = "B"
	}

	r.pdf.SetPage(page)
	r.pdf.SetFont(fontFamily, style, size)
	r.pdf.Text(x, pageHeight-y, text)
}

// DrawImage : растровая картинка с нижним левым углом в (x, y) от низа страницы.
// format — "PNG" или "JPEG", alpha < 1 делает подпись полупрозрачной.
func (r *Renderer) DrawImage(page int, name string, data []byte, format string, x, y, width, height, alpha float64) error {
	_, pageHeight := r.PageSize(page)
	if pageHeight == 0 {
		return fmt.Errorf("страницы %d нет в документе", page)
	}

	options := gofpdf.ImageOptions{ImageType: format}

	r.pdf.SetPage(page)
	if r.pdf.GetImageInfo(name) == nil {
		r.pdf.RegisterImageOptionsReader(name, options, bytes.NewReader(data))
		if r.pdf.Err() {
			return r.pdf.Error()
		}
	}

	r.pdf.SetAlpha(alpha, "Normal")
	r.pdf.ImageOptions(name, x, pageHeight-y-height, width, height, false, options, 0, "")
	r.pdf.SetAlpha(1.0, "Normal")

	if r.pdf.Err() {
		return r.pdf.Error()
	}
	return nil
}

// Bytes : сериализует документ
func (r *Renderer) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromTopLeft : перевод координаты поля из системы «от верхнего левого угла»
// в систему отрисовки «от нижнего левого угла»
func FromTopLeft(pageHeight, yTop, height float64) float64 {
	return pageHeight - yTop - height
}

// DetectImageFormat : сначала пробуем PNG, затем JPEG.
// Проверка до регистрации картинки обязательна: ошибка внутри gofpdf
// липкая и портит весь документ целиком.
func DetectImageFormat(data []byte) (string, bool) {
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err == nil {
		return "PNG", true
	}
	if _, err := jpeg.DecodeConfig(bytes.NewReader(data)); err == nil {
		return "JPEG", true
	}
	return "", false
}
