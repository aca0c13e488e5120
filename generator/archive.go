package generator

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"
	"sync"

	canvasrenderer "github.com/ByLCY/cardpress/renderer/canvas"
)

// Archive 接收渲染完成的卡片。Add 与 Skip 可能被多个 goroutine 以任意顺序调用，
// index 为从 0 开始的行序号，每个 index 只会出现一次。
type Archive interface {
	Add(index int, img image.Image) error
	Skip(index int) error
	Close() error
}

// MemberName 返回第 index 行（从 0 开始）卡片在压缩包中的文件名。
func MemberName(index int) string { return fmt.Sprintf("card_%d.jpg", index+1) }

// zipArchive 每行写入一个 JPEG 成员，完成顺序无关，文件名由行序号决定。
type zipArchive struct {
	quality int

	mu sync.Mutex
	zw *zip.Writer
}

func newZipArchive(w io.Writer, quality int) *zipArchive {
	return &zipArchive{quality: quality, zw: zip.NewWriter(w)}
}

func (a *zipArchive) Add(index int, img image.Image) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: a.quality}); err != nil {
		return fmt.Errorf("编码卡片 %d 失败: %w", index+1, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// JPEG 已压缩，直接存储
	fw, err := a.zw.CreateHeader(&zip.FileHeader{Name: MemberName(index), Method: zip.Store})
	if err != nil {
		return fmt.Errorf("写入压缩包失败: %w", err)
	}
	if _, err := fw.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("写入压缩包失败: %w", err)
	}
	return nil
}

func (a *zipArchive) Skip(int) error { return nil }

func (a *zipArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.zw.Close()
}

// pdfArchive 按行序写页面：先完成的行暂存，直到前面的行全部到达（或被跳过）。
// 领先 next 达到 window 行的卡片会阻塞在 Add 中，暂存的图片因此不超过 window 张。
type pdfArchive struct {
	window int
	blank  image.Rectangle // 没有任何卡片时输出的空白页尺寸

	mu      sync.Mutex
	ready   *sync.Cond
	doc     *canvasrenderer.PDFDocument
	next    int
	pending map[int]image.Image // nil 表示该行被跳过
	err     error
}

func newPDFArchive(w io.Writer, meta canvasrenderer.DocumentMeta, window int, blank image.Rectangle) *pdfArchive {
	if window < 1 {
		window = 1
	}
	a := &pdfArchive{
		window:  window,
		blank:   blank,
		doc:     canvasrenderer.NewPDFDocument(w, meta),
		pending: map[int]image.Image{},
	}
	a.ready = sync.NewCond(&a.mu)
	return a
}

func (a *pdfArchive) Add(index int, img image.Image) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for a.err == nil && index-a.next >= a.window {
		a.ready.Wait()
	}
	if a.err != nil {
		return a.err
	}
	a.pending[index] = img
	return a.flush()
}

func (a *pdfArchive) Skip(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.pending[index] = nil
	return a.flush()
}

func (a *pdfArchive) flush() error {
	start := a.next
	defer func() {
		if a.next != start || a.err != nil {
			a.ready.Broadcast()
		}
	}()
	for {
		img, ok := a.pending[a.next]
		if !ok {
			return nil
		}
		delete(a.pending, a.next)
		a.next++
		if img == nil {
			continue
		}
		if err := a.doc.AddPage(img); err != nil {
			a.err = err
			return err
		}
	}
}

func (a *pdfArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	if len(a.pending) > 0 {
		return fmt.Errorf("还有 %d 页未写入", len(a.pending))
	}
	if a.doc.Pages() == 0 && !a.blank.Empty() {
		// 全部行失败或没有数据行时仍输出一个合法的单页文档
		page := image.NewRGBA(image.Rect(0, 0, a.blank.Dx(), a.blank.Dy()))
		draw.Draw(page, page.Bounds(), image.White, image.Point{}, draw.Src)
		if err := a.doc.AddPage(page); err != nil {
			return err
		}
	}
	return a.doc.Close()
}
