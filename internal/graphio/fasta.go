// Package graphio reads and writes the pipeline's file formats: FASTA
// corpora, the weighted DOT graph, the distance matrix text file, and the
// clustering result file.
package graphio

import (
	"bufio"
	"os"
	"strings"

	"seqclust/pkg/apperror"
)

// Corpus is a set of equal-length sequences flattened into one buffer.
// Sequence i occupies Data[i*Length : (i+1)*Length].
type Corpus struct {
	N      int
	Length int
	Data   []byte
}

// Sequence returns the i-th sequence.
func (c *Corpus) Sequence(i int) []byte {
	return c.Data[i*c.Length : (i+1)*c.Length]
}

// ReadFASTA reads a simple FASTA file: lines starting with '>' are headers,
// the following lines up to the next header are fragments of one sequence
// and get concatenated. All sequences must have the same length.
func ReadFASTA(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeFileNotOpenable, "cannot open FASTA file").WithField(path)
	}
	defer f.Close()

	var seqs []string
	var current strings.Builder

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line[0] == '>' {
			if current.Len() > 0 {
				seqs = append(seqs, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeMalformedFasta, "reading FASTA file").WithField(path)
	}
	if current.Len() > 0 {
		seqs = append(seqs, current.String())
	}

	if len(seqs) == 0 {
		return nil, apperror.NewWithField(apperror.CodeEmptyCorpus, "no sequences in input", path)
	}

	length := len(seqs[0])
	corpus := &Corpus{
		N:      len(seqs),
		Length: length,
		Data:   make([]byte, 0, len(seqs)*length),
	}
	for i, s := range seqs {
		if len(s) != length {
			return nil, apperror.Newf(apperror.CodeUnequalSequences,
				"sequence %d has length %d, expected %d", i, len(s), length)
		}
		corpus.Data = append(corpus.Data, s...)
	}

	return corpus, nil
}
